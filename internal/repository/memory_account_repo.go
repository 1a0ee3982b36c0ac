package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/authapp/internal/model"
)

// MemoryAccountRepo はプロセス内メモリにアカウントを保持するリポジトリ。
// テストおよびDBなしでの起動（AUTHAPP_MEMORY_STORE）で使用する。
type MemoryAccountRepo struct {
	mu      sync.RWMutex
	byEmail map[string]*model.Account
	byID    map[string]*model.Account
}

// NewMemoryAccountRepo はMemoryAccountRepoを生成する。
func NewMemoryAccountRepo() *MemoryAccountRepo {
	return &MemoryAccountRepo{
		byEmail: make(map[string]*model.Account),
		byID:    make(map[string]*model.Account),
	}
}

// FindByEmail は正規化済みメールアドレスでアカウントを取得する。見つからない場合はnilを返す。
// 返り値はコピーであり、変更しても保存内容には影響しない。
func (r *MemoryAccountRepo) FindByEmail(_ context.Context, email string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// Insert はアカウントを作成する。同じメールアドレスが既にあればErrDuplicateEmailを返す。
func (r *MemoryAccountRepo) Insert(_ context.Context, a *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[a.Email]; exists {
		return ErrDuplicateEmail
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	cp := *a
	r.byEmail[cp.Email] = &cp
	r.byID[cp.ID] = &cp
	return nil
}

// UpdateLastLogin は最終ログイン日時を更新する。既存値より古い日時では巻き戻さない。
func (r *MemoryAccountRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	if at.After(a.LastLogin) {
		a.LastLogin = at
	}
	return nil
}

// Len は保持しているアカウント数を返す。
func (r *MemoryAccountRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// compile-time interface check
var _ AccountRepository = (*MemoryAccountRepo)(nil)

// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/authapp/internal/model"
)

// ErrDuplicateEmail は一意制約によりアカウントを作成できなかった場合に返す。
// 事前チェックをすり抜けた同時サインアップもここで検出される。
var ErrDuplicateEmail = errors.New("account with this email already exists")

// ErrAccountNotFound は更新対象のアカウントが存在しない場合に返す。
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository はアカウントデータの永続化インターフェース。
// メールアドレスは正規化済みの値を渡すこと。
type AccountRepository interface {
	// FindByEmail は正規化済みメールアドレスでアカウントを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Account, error)

	// Insert はアカウントを作成する。IDが空の場合は採番して設定する。
	// メールアドレスが既に存在する場合はErrDuplicateEmailを返す。
	Insert(ctx context.Context, account *model.Account) error

	// UpdateLastLogin は最終ログイン日時を更新する。
	// 既存値より古い日時では巻き戻さない。
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

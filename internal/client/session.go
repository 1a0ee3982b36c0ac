package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hitoshi/authapp/internal/gate"
	"github.com/hitoshi/authapp/internal/model"
)

// Session はクライアント側の認証状態を保持する。
// isAuthenticatedはこのプロセスでサインインが完了した場合にのみtrueになる。
// トークンはTokenStoreにも保存され、次回起動時にも参照される。
type Session struct {
	api   *Client
	store TokenStore

	mu            sync.RWMutex
	authenticated bool
	token         string
	user          *model.Profile
}

// NewSession はSessionを生成する。
func NewSession(api *Client, store TokenStore) *Session {
	return &Session{api: api, store: store}
}

// SignUp はアカウントを作成する。認証状態は変えない。
func (s *Session) SignUp(ctx context.Context, req SignUpRequest) (string, error) {
	return s.api.SignUp(ctx, req)
}

// SignIn はサインインし、フラグ・トークン・ユーザーを設定する。
func (s *Session) SignIn(ctx context.Context, email, password string) (*model.Profile, error) {
	resp, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(resp.Token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	user := resp.User
	s.mu.Lock()
	s.authenticated = true
	s.token = resp.Token
	s.user = &user
	s.mu.Unlock()

	return &user, nil
}

// SignOut はフラグ・トークン・ユーザーを破棄する。サーバーには通知しない。
func (s *Session) SignOut() error {
	s.mu.Lock()
	s.authenticated = false
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	return s.store.Clear()
}

// IsAuthenticated はこのプロセスでサインインが完了しているかを返す。
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// User はサインイン時に受け取ったユーザー情報を返す。
func (s *Session) User() (*model.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, false
	}
	u := *s.user
	return &u, true
}

// Token は保持中のトークンを返す。メモリに無ければTokenStoreを参照する。
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token != "" {
		return token, true
	}

	stored, ok, err := s.store.Load()
	if err != nil {
		slog.Warn("failed to load stored token", slog.String("error", err.Error()))
		return "", false
	}
	return stored, ok
}

// Signals はゲートへの入力を返す。
func (s *Session) Signals() gate.Signals {
	_, hasToken := s.Token()
	return gate.Signals{
		SessionFlag:  s.IsAuthenticated(),
		TokenPresent: hasToken,
	}
}

// Validate は保持中のトークンをサーバーに問い合わせて確認する。
// 401の場合は古いトークンとして破棄しfalseを返す。ゲートはこれを呼ばない。
func (s *Session) Validate(ctx context.Context) (*Me, bool, error) {
	token, ok := s.Token()
	if !ok {
		return nil, false, nil
	}

	me, err := s.api.Me(ctx, token)
	if IsUnauthorized(err) {
		if clearErr := s.SignOut(); clearErr != nil {
			return nil, false, clearErr
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return me, true, nil
}

var _ gate.SignalSource = (*Session)(nil)

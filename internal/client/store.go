package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultTokenMaxAge は保存したトークンの有効期間（1日）。
const DefaultTokenMaxAge = 24 * time.Hour

// TokenStore はトークンを永続化する。
type TokenStore interface {
	// Load は保存済みのトークンを返す。無い場合や期限切れの場合はokがfalse。
	Load() (token string, ok bool, err error)
	Save(token string) error
	Clear() error
}

type storedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FileTokenStore はJSONファイルにトークンを保存する。
type FileTokenStore struct {
	path   string
	maxAge time.Duration
	now    func() time.Time
}

// FileStoreOption はFileTokenStoreの設定を変更する。
type FileStoreOption func(*FileTokenStore)

// WithStoreClock は現在時刻の取得関数を差し替える。
func WithStoreClock(now func() time.Time) FileStoreOption {
	return func(s *FileTokenStore) { s.now = now }
}

// WithMaxAge はトークンの保存期間を変更する。
func WithMaxAge(d time.Duration) FileStoreOption {
	return func(s *FileTokenStore) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

// NewFileTokenStore はFileTokenStoreを生成する。
func NewFileTokenStore(path string, opts ...FileStoreOption) *FileTokenStore {
	s := &FileTokenStore{
		path:   path,
		maxAge: DefaultTokenMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultTokenPath はユーザー設定ディレクトリ配下の既定の保存先を返す。
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "authctl", "token.json"), nil
}

// Path は保存先のパスを返す。
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load は保存済みトークンを読み込む。期限切れのトークンは削除し、無いものとして扱う。
func (s *FileTokenStore) Load() (string, bool, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read token file: %w", err)
	}

	var st storedToken
	if err := json.Unmarshal(raw, &st); err != nil {
		return "", false, fmt.Errorf("failed to decode token file: %w", err)
	}

	if st.Token == "" || !s.now().Before(st.ExpiresAt) {
		if err := s.Clear(); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
	return st.Token, true, nil
}

// Save はトークンを期限付きで保存する。
func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}

	raw, err := json.Marshal(storedToken{
		Token:     token,
		ExpiresAt: s.now().Add(s.maxAge),
	})
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

// Clear は保存済みトークンを削除する。無い場合もエラーにしない。
func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

var _ TokenStore = (*FileTokenStore)(nil)

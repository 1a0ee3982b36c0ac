// Package auth はメールアドレスとパスワードによるサインアップ・サインインのユースケースを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/hitoshi/authapp/internal/credential"
	"github.com/hitoshi/authapp/internal/model"
	"github.com/hitoshi/authapp/internal/password"
	"github.com/hitoshi/authapp/internal/repository"
	"github.com/hitoshi/authapp/internal/token"
)

// サインアップ・サインインで必須項目が欠けている場合のメッセージ
const (
	MsgSignUpMissingFields = "All fields are required"
	MsgSignInMissingFields = "Email and password are required"
)

// emailPattern は意図的に狭いメール形式。RFCの文法には合わせない。
// 末尾は2〜3文字のセグメントで終わる必要がある。
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// ValidEmailFormat はメールアドレスが受け付け可能な形式かどうかを返す。
func ValidEmailFormat(email string) bool {
	return emailPattern.MatchString(email)
}

// TokenCodec はセッショントークンの発行と検証のインターフェース。
type TokenCodec interface {
	Issue(id token.Identity) (string, error)
	Verify(tokenString string) (*token.Claims, error)
}

// NameSanitizer は表示名のサニタイズ関数。
type NameSanitizer interface {
	Sanitize(name string) string
}

// Recorder は認証結果の計測インターフェース。
type Recorder interface {
	RecordSignUp(outcome string)
	RecordSignIn(outcome string)
}

// SignUpInput はサインアップの入力。
type SignUpInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// SignInResult はサインイン成功時の結果。
type SignInResult struct {
	Token string
	User  model.Profile
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	accounts  repository.AccountRepository
	hasher    credential.Hasher
	tokens    TokenCodec
	sanitizer NameSanitizer
	recorder  Recorder
	now       func() time.Time
}

// Option はServiceの設定を変更する。
type Option func(*Service)

// WithClock は現在時刻の取得関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNameSanitizer は氏名のサニタイザを設定する。
func WithNameSanitizer(sanitizer NameSanitizer) Option {
	return func(s *Service) { s.sanitizer = sanitizer }
}

// WithRecorder は計測先を設定する。
func WithRecorder(recorder Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

// NewService はServiceを生成する。
func NewService(
	accounts repository.AccountRepository,
	hasher credential.Hasher,
	tokens TokenCodec,
	opts ...Option,
) *Service {
	s := &Service{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp はアカウントを作成する。トークンは発行せず、ログイン状態にもしない。
// 検証順序: 必須項目 → メール形式 → 重複 → パスワードポリシー
func (s *Service) SignUp(ctx context.Context, in SignUpInput) error {
	err := s.signUp(ctx, in)
	s.recorder.RecordSignUp(outcomeOf(err))
	return err
}

func (s *Service) signUp(ctx context.Context, in SignUpInput) error {
	firstName := s.cleanName(in.FirstName)
	lastName := s.cleanName(in.LastName)
	rawEmail := strings.TrimSpace(in.Email)

	// 1. 必須項目
	if firstName == "" || lastName == "" || rawEmail == "" || in.Password == "" {
		return model.NewMissingFieldsError(MsgSignUpMissingFields)
	}

	// 2. メール形式
	if !ValidEmailFormat(rawEmail) {
		return model.NewInvalidEmailFormatError()
	}
	email := model.NormalizeEmail(rawEmail)

	// 3. 重複（ベストエフォート。最終判定はInsert時の一意制約）
	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return model.NewInternalError(fmt.Errorf("failed to look up account: %w", err))
	}
	if existing != nil {
		return model.NewEmailInUseError()
	}

	// 4. パスワードポリシー
	if result := password.Validate(in.Password); !result.Valid {
		return model.NewWeakPasswordError(result.Reason.Message())
	}

	// 5. ハッシュ化して保存
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.NewInternalError(err)
	}

	now := s.now()
	account := &model.Account{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		CredentialHash: hash,
		CreatedAt:      now,
		LastLogin:      now,
	}

	if err := s.accounts.Insert(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.NewEmailInUseError()
		}
		return model.NewInternalError(fmt.Errorf("failed to create account: %w", err))
	}

	slog.Info("account created",
		slog.String("account_id", account.ID),
		slog.String("email", email),
	)
	return nil
}

// SignIn は資格情報を検証し、成功時にセッショントークンを発行する。
// アカウント不存在とパスワード不一致は同じエラーを返す。
func (s *Service) SignIn(ctx context.Context, email, plaintext string) (*SignInResult, error) {
	res, err := s.signIn(ctx, email, plaintext)
	s.recorder.RecordSignIn(outcomeOf(err))
	return res, err
}

func (s *Service) signIn(ctx context.Context, email, plaintext string) (*SignInResult, error) {
	rawEmail := strings.TrimSpace(email)

	// 1. 必須項目
	if rawEmail == "" || plaintext == "" {
		return nil, model.NewMissingFieldsError(MsgSignInMissingFields)
	}

	// 2. メール形式
	if !ValidEmailFormat(rawEmail) {
		return nil, model.NewInvalidEmailFormatError()
	}

	// 3. アカウント検索
	account, err := s.accounts.FindByEmail(ctx, model.NormalizeEmail(rawEmail))
	if err != nil {
		return nil, model.NewInternalError(fmt.Errorf("failed to look up account: %w", err))
	}
	if account == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	// 4. パスワード照合
	if !s.hasher.Verify(plaintext, account.CredentialHash) {
		slog.Warn("sign in rejected", slog.String("account_id", account.ID))
		return nil, model.NewInvalidCredentialsError()
	}

	// 5. 最終ログイン日時を更新し、トークンを発行
	loginAt := s.now()
	if !loginAt.After(account.LastLogin) {
		loginAt = account.LastLogin.Add(time.Microsecond)
	}
	if err := s.accounts.UpdateLastLogin(ctx, account.ID, loginAt); err != nil {
		return nil, model.NewInternalError(fmt.Errorf("failed to update last login: %w", err))
	}

	signed, err := s.tokens.Issue(token.Identity{
		ID:        account.ID,
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
	})
	if err != nil {
		return nil, model.NewInternalError(fmt.Errorf("failed to issue token: %w", err))
	}

	slog.Info("account signed in", slog.String("account_id", account.ID))

	return &SignInResult{
		Token: signed,
		User:  account.Profile(),
	}, nil
}

// Authenticate はBearerトークンを検証し、埋め込まれたアカウント情報を返す。
func (s *Service) Authenticate(_ context.Context, tokenString string) (*token.Identity, error) {
	if tokenString == "" {
		return nil, model.NewUnauthenticatedError()
	}
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, model.NewUnauthenticatedError()
	}
	identity := claims.Identity()
	return &identity, nil
}

func (s *Service) cleanName(name string) string {
	if s.sanitizer != nil {
		return s.sanitizer.Sanitize(name)
	}
	return strings.TrimSpace(name)
}

// outcomeOf は計測用のラベルを返す。
func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	return strings.ToLower(string(model.KindOf(err)))
}

type nopRecorder struct{}

func (nopRecorder) RecordSignUp(string) {}
func (nopRecorder) RecordSignIn(string) {}

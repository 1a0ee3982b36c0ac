// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ErrorKind は認証エラーの種別を表す。
type ErrorKind string

// 定義済みエラー種別
const (
	KindMissingFields      ErrorKind = "MISSING_FIELDS"
	KindInvalidEmailFormat ErrorKind = "INVALID_EMAIL_FORMAT"
	KindWeakPassword       ErrorKind = "WEAK_PASSWORD"
	KindEmailInUse         ErrorKind = "EMAIL_IN_USE"
	KindInvalidCredentials ErrorKind = "INVALID_CREDENTIALS"
	KindUnauthenticated    ErrorKind = "UNAUTHENTICATED"
	KindInternal           ErrorKind = "INTERNAL_ERROR"
)

// 種別ごとの固定メッセージ
const (
	MsgInvalidEmailFormat = "Invalid email format"
	MsgEmailInUse         = "Email already in use"
	MsgInvalidCredentials = "Invalid email or password"
	MsgUnauthenticated    = "Not authenticated"
	MsgInternal           = "internal error"
)

// AuthError は認証ユースケースが返す統一エラー。
// Internal以外のMessageはそのまま呼び出し元に返してよい。
type AuthError struct {
	Kind    ErrorKind
	Message string
	Err     error // 原因（Internalの場合のみログ用に保持）
}

// Error はerrorインターフェースを実装する。
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap は原因エラーを返す。
func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsClientError は呼び出し元の入力に起因するエラーかどうかを返す。
func (e *AuthError) IsClientError() bool {
	return e.Kind != KindInternal
}

// KindOf はerrチェーン中のAuthErrorの種別を返す。AuthErrorでなければKindInternalを返す。
func KindOf(err error) ErrorKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// NewMissingFieldsError は必須項目未入力エラーを生成する。
// メッセージはユースケースごとに異なるため呼び出し側で指定する。
func NewMissingFieldsError(message string) *AuthError {
	return &AuthError{Kind: KindMissingFields, Message: message}
}

// NewInvalidEmailFormatError はメール形式エラーを生成する。
func NewInvalidEmailFormatError() *AuthError {
	return &AuthError{Kind: KindInvalidEmailFormat, Message: MsgInvalidEmailFormat}
}

// NewWeakPasswordError はパスワードポリシー違反エラーを生成する。
func NewWeakPasswordError(reason string) *AuthError {
	return &AuthError{Kind: KindWeakPassword, Message: reason}
}

// NewEmailInUseError はメールアドレス重複エラーを生成する。
func NewEmailInUseError() *AuthError {
	return &AuthError{Kind: KindEmailInUse, Message: MsgEmailInUse}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// アカウント不存在とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *AuthError {
	return &AuthError{Kind: KindInvalidCredentials, Message: MsgInvalidCredentials}
}

// NewUnauthenticatedError はトークン未提示・無効エラーを生成する。
func NewUnauthenticatedError() *AuthError {
	return &AuthError{Kind: KindUnauthenticated, Message: MsgUnauthenticated}
}

// NewInternalError はインフラ層の失敗を包む内部エラーを生成する。
func NewInternalError(err error) *AuthError {
	return &AuthError{Kind: KindInternal, Message: MsgInternal, Err: err}
}

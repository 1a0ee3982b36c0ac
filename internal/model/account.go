// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// Account はメールアドレスとパスワードで認証されるアカウントを表す。
// CredentialHashはどのレスポンス・ログにも出力しない。
type Account struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	CredentialHash string `json:"-"`
	CreatedAt      time.Time
	LastLogin      time.Time
}

// Profile はクライアントに返却してよいアカウントの表示用情報。
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Profile はアカウントから表示用情報を取り出す。
func (a *Account) Profile() Profile {
	return Profile{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
	}
}

// NormalizeEmail はメールアドレスを検索キーの形（前後空白除去・小文字化）に正規化する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Package token はサインイン時に発行するセッショントークン（HS256 JWT）を扱う。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL はトークンの有効期間（1日）。
const DefaultTTL = 24 * time.Hour

// ErrInvalidToken は署名不正・期限切れ・形式不正のいずれの場合にも返す。
// 呼び出し側はこれらを区別しない。
var ErrInvalidToken = errors.New("invalid token")

// ErrEmptySecret は署名鍵が設定されていない場合に返す。
var ErrEmptySecret = errors.New("token signing secret is empty")

// Identity はトークンに埋め込むアカウント情報。
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Claims はJWTのペイロード。
// アカウントIDは"id"クレームに入る。RegisteredClaims.ID（jti）とは別物。
type Claims struct {
	AccountID string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	jwt.RegisteredClaims
}

// Identity はクレームからアカウント情報を取り出す。
func (c *Claims) Identity() Identity {
	return Identity{
		ID:        c.AccountID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}
}

// Codec はトークンの発行と検証を行う。
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option はCodecの設定を変更する。
type Option func(*Codec)

// WithClock は現在時刻の取得関数を差し替える。テスト用。
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec はCodecを生成する。ttlが0以下の場合はDefaultTTLを使う。
func NewCodec(secret []byte, ttl time.Duration, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Codec{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL はトークンの有効期間を返す。
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue はアカウント情報を埋め込んだ署名済みトークンを発行する。
func (c *Codec) Issue(id Identity) (string, error) {
	now := c.now()
	claims := Claims{
		AccountID: id.ID,
		Email:     id.Email,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify は署名と有効期限を検証し、埋め込まれたアカウント情報を返す。
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Package credential はパスワードのハッシュ化と照合を提供する。
package credential

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost はbcryptのコストファクタ（2^10ラウンド）。
const DefaultCost = 10

// MaxPasswordBytes はbcryptが参照する入力の最大バイト数。
// これを超える部分はHashとVerifyの両方で切り捨てる。
const MaxPasswordBytes = 72

// ErrEmptyPassword は空のパスワードをハッシュ化しようとした場合に返す。
var ErrEmptyPassword = errors.New("password cannot be empty")

// Hasher はパスワードハッシュの生成と照合のインターフェース。
type Hasher interface {
	// Hash は平文パスワードからソルト付きハッシュを生成する。
	Hash(plaintext string) (string, error)
	// Verify は平文パスワードがハッシュと一致するかを返す。
	// 不一致・壊れたハッシュのいずれもfalseを返し、エラーにはしない。
	Verify(plaintext, hash string) bool
}

// BcryptHasher はbcryptによるHasherの実装。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はBcryptHasherを生成する。
// 範囲外のコストが指定された場合はDefaultCostを使う。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash は平文パスワードからbcryptハッシュを生成する。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword(truncate(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// Verify は平文パスワードとbcryptハッシュを照合する。
// 不一致以外のエラー（ハッシュ破損など）はログに残した上でfalseを返す。
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), truncate(plaintext))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		slog.Error("password comparison failed", slog.String("error", err.Error()))
	}
	return false
}

func truncate(plaintext string) []byte {
	b := []byte(plaintext)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

// Cost は設定されたコストファクタを返す。
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// compile-time interface check
var _ Hasher = (*BcryptHasher)(nil)

// Package password はパスワード強度ポリシーの検証を提供する。
//
// ルールは固定順序で評価し、最初に違反したルールだけを理由として返す。
// 複数のルールに違反していても表示メッセージが一意に決まる。
package password

import (
	"strings"
	"unicode/utf8"
)

// MinLength はパスワードの最小文字数。
const MinLength = 8

// SpecialCharacters は記号ルールで受け付ける文字の集合。
const SpecialCharacters = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// Reason はポリシー違反の理由を表す。
type Reason int

// 評価順に並べたポリシー違反理由
const (
	ReasonNone Reason = iota
	ReasonTooShort
	ReasonNoUppercase
	ReasonNoLowercase
	ReasonNoDigit
	ReasonNoSpecial
)

var reasonMessages = map[Reason]string{
	ReasonTooShort:    "Password must be at least 8 characters long",
	ReasonNoUppercase: "Password must contain at least 1 uppercase letter",
	ReasonNoLowercase: "Password must contain at least 1 lowercase letter",
	ReasonNoDigit:     "Password must contain at least 1 number",
	ReasonNoSpecial:   "Password must contain at least 1 special character",
}

// Message はユーザー向けの固定メッセージを返す。
func (r Reason) Message() string {
	return reasonMessages[r]
}

// String はログ出力用の短い名前を返す。
func (r Reason) String() string {
	switch r {
	case ReasonTooShort:
		return "too_short"
	case ReasonNoUppercase:
		return "no_uppercase"
	case ReasonNoLowercase:
		return "no_lowercase"
	case ReasonNoDigit:
		return "no_digit"
	case ReasonNoSpecial:
		return "no_special"
	default:
		return "none"
	}
}

// Result は検証結果。Validがfalseの場合のみReasonが意味を持つ。
type Result struct {
	Valid  bool
	Reason Reason
}

type rule struct {
	reason Reason
	ok     func(string) bool
}

// rules の並び順がそのままメッセージの優先順位になる。
var rules = []rule{
	{ReasonTooShort, func(p string) bool { return utf8.RuneCountInString(p) >= MinLength }},
	{ReasonNoUppercase, func(p string) bool { return containsFunc(p, isUpper) }},
	{ReasonNoLowercase, func(p string) bool { return containsFunc(p, isLower) }},
	{ReasonNoDigit, func(p string) bool { return containsFunc(p, isDigit) }},
	{ReasonNoSpecial, func(p string) bool { return strings.ContainsAny(p, SpecialCharacters) }},
}

// Validate はパスワードをポリシーに照らして検証する。
func Validate(p string) Result {
	for _, r := range rules {
		if !r.ok(p) {
			return Result{Valid: false, Reason: r.reason}
		}
	}
	return Result{Valid: true, Reason: ReasonNone}
}

// ASCIIの範囲だけを対象にする。全角英字などは大文字・小文字として数えない。
func isUpper(c rune) bool { return c >= 'A' && c <= 'Z' }
func isLower(c rune) bool { return c >= 'a' && c <= 'z' }
func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func containsFunc(s string, f func(rune) bool) bool {
	return strings.IndexFunc(s, f) >= 0
}

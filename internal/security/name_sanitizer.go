// Package security はアプリケーションのセキュリティ機能を提供する。
//
// NameSanitizer はサインアップ時に受け取った氏名からHTMLタグを除去する。
// 氏名はフロントエンドでそのまま表示されるため、保存前にプレーンテキスト化する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NameSanitizer は表示名のサニタイズ機能のインターフェースを定義する。
type NameSanitizer interface {
	// Sanitize は表示名から全てのHTMLタグを除去し、前後の空白を取り除いた文字列を返す。
	// タグのみで構成された入力には空文字列を返す。
	Sanitize(name string) string
}

// nameSanitizer はNameSanitizerの実装。
// bluemondayのStrictPolicyは全タグを除去するため、平文だけが残る。
type nameSanitizer struct {
	policy *bluemonday.Policy
}

// plainTextEntities はStrictPolicyが平文に対して導入するエンティティのみを戻す。
// &lt; と &gt; は戻さないため、エンティティで書かれたタグは不活性な文字列のまま残る。
var plainTextEntities = strings.NewReplacer(
	"&#39;", "'",
	"&#34;", `"`,
	"&amp;", "&",
)

// NewNameSanitizer はNameSanitizerの新しいインスタンスを生成する。
func NewNameSanitizer() NameSanitizer {
	return &nameSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は表示名をプレーンテキスト化する。
// StrictPolicyはアポストロフィ等をエスケープするため、それらのエンティティだけを戻す。
func (s *nameSanitizer) Sanitize(name string) string {
	cleaned := s.policy.Sanitize(strings.TrimSpace(name))
	return strings.TrimSpace(plainTextEntities.Replace(cleaned))
}

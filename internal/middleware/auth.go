// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/authapp/internal/model"
	"github.com/hitoshi/authapp/internal/token"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// identityContextKey はリクエストコンテキストに検証済みトークンの主体を格納するためのキー。
	identityContextKey = contextKey("identity")

	// accountSlotContextKey はロギングミドルウェアがアカウントIDを受け取るためのスロット。
	accountSlotContextKey = contextKey("account_slot")
)

// Authenticator はBearerトークンを検証するインターフェース。
// auth.Serviceが実装する。
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*token.Identity, error)
}

// NewBearerAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証し、
// 主体をリクエストコンテキストに注入するミドルウェアを返す。
// トークンが無い、または検証に失敗した場合は401を返す。
func NewBearerAuthMiddleware(authenticator Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.MsgUnauthenticated)
				return
			}

			identity, err := authenticator.Authenticate(r.Context(), raw)
			if err != nil || identity == nil {
				if err != nil && model.KindOf(err) == model.KindInternal {
					slog.Error("failed to authenticate bearer token",
						slog.String("error", err.Error()),
					)
				}
				WriteErrorResponse(w, http.StatusUnauthorized, model.MsgUnauthenticated)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// bearerToken は "Authorization: Bearer <token>" からトークンを取り出す。
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// IdentityFromContext はリクエストコンテキストから検証済みの主体を取得する。
// Bearer認証ミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (*token.Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(*token.Identity)
	if !ok || identity == nil {
		return nil, fmt.Errorf("identity not found in context")
	}
	return identity, nil
}

// AccountIDFromContext はリクエストコンテキストからアカウントIDを取得する。
func AccountIDFromContext(ctx context.Context) (string, error) {
	identity, err := IdentityFromContext(ctx)
	if err != nil {
		return "", err
	}
	if identity.ID == "" {
		return "", fmt.Errorf("account ID not found in context")
	}
	return identity.ID, nil
}

// ContextWithIdentity はコンテキストに主体を注入する。
// 外側のロギングミドルウェアがスロットを用意していれば、アカウントIDも書き戻す。
func ContextWithIdentity(ctx context.Context, identity *token.Identity) context.Context {
	if slot, ok := ctx.Value(accountSlotContextKey).(*string); ok && identity != nil {
		*slot = identity.ID
	}
	return context.WithValue(ctx, identityContextKey, identity)
}

// withAccountSlot は内側のミドルウェアがアカウントIDを書き込めるスロットを用意する。
func withAccountSlot(ctx context.Context) (context.Context, *string) {
	slot := new(string)
	return context.WithValue(ctx, accountSlotContextKey, slot), slot
}

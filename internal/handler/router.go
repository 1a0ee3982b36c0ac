package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/authapp/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	Logger            *slog.Logger
	Authenticator     middleware.Authenticator
	Metrics           middleware.HTTPRecorder

	// 認証
	AuthService AuthServiceInterface

	// /metrics で公開するハンドラー。nilの場合はルートを登録しない。
	MetricsHandler http.Handler
}

// SetupAuthRoutes は認証関連のルーティングを設定したchi.Routerを返す。
func SetupAuthRoutes(service AuthServiceInterface, authenticator middleware.Authenticator) http.Handler {
	r := chi.NewRouter()
	mountAuthRoutes(r, NewAuthHandler(service), authenticator)
	return r
}

func mountAuthRoutes(r chi.Router, h *AuthHandler, authenticator middleware.Authenticator) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.SignUp)
		r.Post("/signin", h.SignIn)

		r.With(middleware.NewBearerAuthMiddleware(authenticator)).Get("/me", h.Me)
	})
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS
//
// GET /api/auth/me のみBearer認証を追加で通す。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.Get("/api/health", Health)
	mountAuthRoutes(r, NewAuthHandler(deps.AuthService), deps.Authenticator)

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}

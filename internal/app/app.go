package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/authapp/internal/auth"
	"github.com/hitoshi/authapp/internal/client"
	"github.com/hitoshi/authapp/internal/config"
	"github.com/hitoshi/authapp/internal/credential"
	"github.com/hitoshi/authapp/internal/database"
	"github.com/hitoshi/authapp/internal/handler"
	"github.com/hitoshi/authapp/internal/logger"
	"github.com/hitoshi/authapp/internal/metrics"
	"github.com/hitoshi/authapp/internal/repository"
	"github.com/hitoshi/authapp/internal/security"
	"github.com/hitoshi/authapp/internal/token"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、LOG_LEVELに従ってJSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) *config.Config {
	cfg := config.Load()
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))
	return cfg
}

// Run はcobraが選択したサブコマンドを実行する。
// ctxがキャンセルされるとサーバーはグレースフルシャットダウンする。
func Run(ctx context.Context, w io.Writer, cmd Command) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	cfg := Init(w)

	// healthcheck は軽量サブコマンドのため、必須設定の検証をスキップする
	if cmd == CommandHealthcheck {
		return runHealthcheck(ctx, cfg.ServerPort)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("client_url", cfg.ClientURL),
	)

	switch cmd {
	case CommandMigrate:
		if err := cfg.RequireDatabase(); err != nil {
			return fmt.Errorf("initialization failed: %w", err)
		}
		return runMigrate(cfg)
	default: // CommandServe
		if err := cfg.RequireServe(); err != nil {
			return fmt.Errorf("initialization failed: %w", err)
		}
		return runServe(ctx, cfg)
	}
}

// openAccounts は設定に応じてアカウントストアを開く。
// 返されるclose関数は必ず呼び出すこと。
func openAccounts(ctx context.Context, cfg *config.Config) (repository.AccountRepository, func() error, error) {
	if cfg.MemoryStore {
		slog.Warn("using in-memory account store; accounts are lost on restart")
		return repository.NewMemoryAccountRepo(), func() error { return nil }, nil
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		return nil, nil, err
	}

	slog.Info("database connection established")
	return repository.NewPostgresAccountRepo(db), db.Close, nil
}

// NewHandler は全依存関係をワイヤリングしたHTTPハンドラーを返す。
func NewHandler(cfg *config.Config, accounts repository.AccountRepository, reg *prometheus.Registry) (http.Handler, error) {
	codec, err := token.NewCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	collector := metrics.NewCollector(reg)

	authService := auth.NewService(
		accounts,
		credential.NewBcryptHasher(cfg.BcryptCost),
		codec,
		auth.WithNameSanitizer(security.NewNameSanitizer()),
		auth.WithRecorder(collector),
	)

	return handler.NewRouter(&handler.RouterDeps{
		CORSAllowedOrigin: cfg.ClientURL,
		Logger:            slog.Default(),
		Authenticator:     authService,
		Metrics:           collector,
		AuthService:       authService,
		MetricsHandler:    metrics.SetupMetricsRoute(reg),
	}), nil
}

// newRegistry はプロセス・ランタイムのメトリクスを含むレジストリを生成する。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// runServe はAPIサーバーモードで起動する。
// アカウントストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
func runServe(ctx context.Context, cfg *config.Config) error {
	accounts, closeAccounts, err := openAccounts(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAccounts()

	router, err := NewHandler(cfg, accounts, newRegistry())
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}

	return serve(ctx, server, ln)
}

// serve はlnでHTTPサーバーを起動し、ctxのキャンセルでグレースフルシャットダウンする。
func serve(ctx context.Context, server *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	<-errCh

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	status, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed",
		slog.Uint64("version", uint64(status.Version)),
		slog.Bool("applied", status.Applied),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /api/health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(ctx context.Context, port string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	api := client.NewClient(fmt.Sprintf("http://localhost:%s/api", port),
		client.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	if err := api.Health(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	u.RawQuery = ""
	return u.String()
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string
	MemoryStore bool

	// Token
	JWTSecret string
	TokenTTL  time.Duration

	// Credential
	BcryptCost int

	// Logging
	LogLevel string

	// Server
	ServerPort string

	// CORS
	ClientURL string
}

// Load は環境変数からConfigを読み込む。
// 値の解釈に失敗した場合は既定値を使う。必須項目の検証はRequire*で行う。
func Load() *Config {
	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		MemoryStore: getEnvBool("AUTHAPP_MEMORY_STORE", false),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    getEnvDuration("TOKEN_TTL", 24*time.Hour),
		BcryptCost:  getEnvInt("BCRYPT_COST", 10),
		LogLevel:    getEnvString("LOG_LEVEL", "info"),
		ServerPort:  getEnvString("PORT", "5000"),
		ClientURL:   getEnvString("CLIENT_URL", "http://localhost:3000"),
	}
}

// RequireServe はサーバー起動に必要な環境変数が揃っているかを検証する。
// インメモリストア使用時はDATABASE_URLを要求しない。
func (c *Config) RequireServe() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if !c.MemoryStore && c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	return missingError(missing)
}

// RequireDatabase はマイグレーション実行に必要な環境変数を検証する。
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return missingError([]string{"DATABASE_URL"})
	}
	return nil
}

func missingError(missing []string) error {
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %v", missing)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

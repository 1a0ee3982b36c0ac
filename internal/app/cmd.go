package app

import "fmt"

// Command はauthappのサブコマンド。
type Command string

const (
	// CommandServe はAPIサーバーを起動する。引数なしの既定。
	CommandServe Command = "serve"
	// CommandMigrate はaccountsスキーマのマイグレーションを適用する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のサーバーの /api/health を確認する。
	// シェルの無いdistrolessイメージのHEALTHCHECKから使う。
	CommandHealthcheck Command = "healthcheck"
)

// Commands はサポートするサブコマンドを表示順に返す。
func Commands() []Command {
	return []Command{CommandServe, CommandMigrate, CommandHealthcheck}
}

// Short はサブコマンドの一行説明を返す。
func (c Command) Short() string {
	switch c {
	case CommandServe:
		return "Start the HTTP API server (default)"
	case CommandMigrate:
		return "Apply pending accounts schema migrations"
	case CommandHealthcheck:
		return "Probe the local server's /api/health endpoint"
	default:
		return ""
	}
}

// validate は既知のサブコマンドかどうかを確認する。
func (c Command) validate() error {
	switch c {
	case CommandServe, CommandMigrate, CommandHealthcheck:
		return nil
	default:
		return fmt.Errorf("unknown command %q", string(c))
	}
}

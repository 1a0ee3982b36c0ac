// Package cli はauthctlクライアントCLIのコマンド定義を提供する。
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hitoshi/authapp/internal/client"
	"github.com/hitoshi/authapp/internal/gate"
)

// ErrNotSignedIn は保持中の有効なセッションがない場合に返される。
var ErrNotSignedIn = errors.New("not signed in")

// options はルートコマンドの永続フラグ。
type options struct {
	apiURL    string
	tokenFile string
}

// env はサブコマンドが共有する実行時の依存。
type env struct {
	session *client.Session
	guard   *gate.Guard
	store   *client.FileTokenStore
}

// NewRootCommand はauthctlのルートコマンドを生成する。
func NewRootCommand() *cobra.Command {
	opts := &options{}
	e := &env{}

	root := &cobra.Command{
		Use:           "authctl",
		Short:         "Command-line client for the authapp API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.init(opts)
		},
	}

	defaultURL := os.Getenv("AUTHCTL_API_URL")
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", defaultURL, "base URL of the authapp API (env AUTHCTL_API_URL)")
	root.PersistentFlags().StringVar(&opts.tokenFile, "token-file", "", "path of the stored session token (default: user config dir)")

	root.AddCommand(
		newSignUpCommand(e),
		newSignInCommand(e),
		newSignOutCommand(e),
		newWhoAmICommand(e),
		newGateCommand(e),
	)
	return root
}

func (e *env) init(opts *options) error {
	path := opts.tokenFile
	if path == "" {
		p, err := client.DefaultTokenPath()
		if err != nil {
			return fmt.Errorf("failed to resolve token path: %w", err)
		}
		path = p
	}

	e.store = client.NewFileTokenStore(path)
	e.session = client.NewSession(client.NewClient(opts.apiURL), e.store)
	e.guard = gate.NewGuard(e.session)
	return nil
}

func printDecision(w io.Writer, path string, d gate.Decision) {
	if d.Redirect() {
		fmt.Fprintf(w, "%s: %s -> %s (state: %s)\n", path, d.Action, d.Location, d.State)
		return
	}
	fmt.Fprintf(w, "%s: %s (state: %s)\n", path, d.Action, d.State)
}

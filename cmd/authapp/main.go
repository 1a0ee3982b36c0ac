package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hitoshi/authapp/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "authapp:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "authapp",
		Short:         "Email/password authentication API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runCommand(app.CommandServe),
	}

	for _, cmd := range app.Commands() {
		root.AddCommand(&cobra.Command{
			Use:   string(cmd),
			Short: cmd.Short(),
			Args:  cobra.NoArgs,
			RunE:  runCommand(cmd),
		})
	}
	return root
}

func runCommand(cmd app.Command) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, _ []string) error {
		return app.Run(c.Context(), os.Stdout, cmd)
	}
}

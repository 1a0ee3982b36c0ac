package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hitoshi/authapp/internal/client"
	"github.com/hitoshi/authapp/internal/gate"
)

func newSignUpCommand(e *env) *cobra.Command {
	var req client.SignUpRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a new account",
		Long: `Create a new account. Signing up does not sign you in.

Examples:
  authctl signup --first-name Ada --last-name Lovelace --email ada@example.com --password secret123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			message, err := e.session.SignUp(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("sign up failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			fmt.Fprintf(cmd.OutOrStdout(), "Sign in with: authctl signin --email %s\n", req.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (8+ characters with upper, lower, digit and special)")
	return cmd
}

func newSignInCommand(e *env) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := e.session.SignIn(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("sign in failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Signed in as %s %s <%s>\n", user.FirstName, user.LastName, user.Email)
			fmt.Fprintf(out, "Token stored in %s\n", e.store.Path())
			printDecision(out, gate.SignInPath, e.guard.Check(gate.SignInView))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func newSignOutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Discard the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.session.SignOut(); err != nil {
				return fmt.Errorf("sign out failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoAmICommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, ok, err := e.session.Validate(cmd.Context())
			if err != nil {
				return fmt.Errorf("whoami failed: %w", err)
			}
			if !ok {
				return ErrNotSignedIn
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s> (id: %s)\n", me.FirstName, me.LastName, me.Email, me.ID)
			return nil
		},
	}
}

func newGateCommand(e *env) *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "gate [path]",
		Short: "Evaluate the authentication gate for a view",
		Long: `Evaluate the authentication gate for a view path.

Known views are / (sign in), /signup and /landing. Unknown paths are
treated as protected. A stored token alone yields the "unknown" state;
pass --validate to check it against the server first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := gate.LandingPath
			if len(args) == 1 {
				path = args[0]
			}

			if validate {
				if _, _, err := e.session.Validate(cmd.Context()); err != nil {
					return fmt.Errorf("token validation failed: %w", err)
				}
			}

			printDecision(cmd.OutOrStdout(), path, e.guard.CheckPath(path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "verify the stored token with the server before evaluating")
	return cmd
}

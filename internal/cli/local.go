package cli

import (
	"strings"

	"scrumbringer-admin/internal/store"

	"github.com/spf13/cobra"
)

func newSeedCmd(a *App) *cobra.Command {
	var opts store.SeedOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo organization in the local database",
		Example: strings.TrimSpace(`
  sbadmin seed
  sbadmin seed --admin me@example.com --local /tmp/demo.sqlite
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := resolve(a)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer env.Close()
			if env.Local == nil {
				return writeErr(cmd, errNeedsLocal)
			}
			u, err := env.Local.Seed(cmd.Context(), opts)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, map[string]any{"seeded": true, "user": u})
		},
	}
	cmd.Flags().StringVar(&opts.AdminEmail, "admin", "admin@example.com", "Email of the org admin to create and sign in")
	cmd.Flags().IntVar(&opts.Executions, "executions", 25, "Rule executions generated per rule")
	return cmd
}

func newLoginCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in to the local database as an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := resolve(a)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer env.Close()
			if env.Local == nil {
				return writeErr(cmd, errNeedsLocal)
			}
			u, err := env.Local.SignIn(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, u)
		},
	}
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the local database session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := resolve(a)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer env.Close()
			if env.Local == nil {
				return writeErr(cmd, errNeedsLocal)
			}
			if err := env.Local.SignOut(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, map[string]any{"signedOut": true})
		},
	}
}

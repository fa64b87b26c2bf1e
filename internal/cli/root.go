package cli

import (
	"fmt"
	"os"
	"strings"

	"scrumbringer-admin/internal/app"
	"scrumbringer-admin/internal/format"
	"scrumbringer-admin/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	API     string
	Token   string
	Local   string
	Locale  string
	Theme   string
	Format  string
	Pretty  bool
	LogFile string
}

func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:          "sbadmin",
		Short:        "Scrumbringer admin panel (TUI + scriptable dumps)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive admin panel
  sbadmin

  # Open straight on a page (shortcut for: sbadmin open cards)
  sbadmin cards

  # Work offline against a seeded local database
  sbadmin seed
  sbadmin --local ~/.sbadmin/local.sqlite

  # Scriptable output
  sbadmin dump workflows --format yaml
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, a, app.PageProjects)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&a.API, "api", envOr("SBADMIN_API", ""), "Server base URL (HTTP backend)")
	cmd.PersistentFlags().StringVar(&a.Token, "token", envOr("SBADMIN_TOKEN", ""), "Bearer token for the HTTP backend")
	cmd.PersistentFlags().StringVar(&a.Local, "local", envOr("SBADMIN_LOCAL", ""), "Path to a local sqlite backend (used when no --api is set)")
	cmd.PersistentFlags().StringVar(&a.Locale, "locale", envOr("SBADMIN_LOCALE", ""), "UI locale (en|es; default: from config or $LANG)")
	cmd.PersistentFlags().StringVar(&a.Theme, "theme", envOr("SBADMIN_THEME", ""), "Color theme (auto|light|dark)")
	cmd.PersistentFlags().StringVar(&a.Format, "format", envOr("SBADMIN_FORMAT", "json"), "Output format (json|yaml)")
	cmd.PersistentFlags().BoolVar(&a.Pretty, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&a.LogFile, "log-file", envOr("SBADMIN_LOG_FILE", ""), "Write debug logs (JSON) to this file")

	cmd.AddCommand(newOpenCmd(a))
	cmd.AddCommand(newSeedCmd(a))
	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newLogoutCmd(a))
	cmd.AddCommand(newDumpCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newBackupCmd(a))
	cmd.AddCommand(newDocsCmd(a))

	return cmd
}

func newOpenCmd(a *App) *cobra.Command {
	names := make([]string, 0, len(app.Pages))
	for _, p := range app.Pages {
		names = append(names, p.String())
	}
	return &cobra.Command{
		Use:       "open <page>",
		Short:     "Start the admin panel on a page (" + strings.Join(names, "|") + ")",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.ParsePage(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return runTUI(cmd, a, p)
		},
	}
}

func runTUI(cmd *cobra.Command, a *App, start app.Page) error {
	env, err := resolve(a)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer env.Close()
	if err := tui.Run(env.Runner, env.Options, start); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, a *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, a.Format, a.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

package cli

import (
	"fmt"
	"strings"

	"scrumbringer-admin/internal/docs"

	"github.com/spf13/cobra"
)

func newDocsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:       "docs [topic]",
		Short:     "Print the built-in guide (" + strings.Join(docs.Topics(), "|") + ")",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: docs.Topics(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, a, map[string]any{"topics": docs.Index()})
			}
			md, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown topic %q (known: %s)", args[0], strings.Join(docs.Topics(), ", ")))
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		},
	}
}

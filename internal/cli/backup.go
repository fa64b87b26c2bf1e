package cli

import (
	"errors"
	"strings"

	"scrumbringer-admin/internal/store"

	"github.com/spf13/cobra"
)

func newBackupCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore the local database as JSONL",
	}

	var to string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write every row of the local database to a JSONL file",
		Example: strings.TrimSpace(`
  sbadmin backup export --to ./sbadmin-backup.jsonl
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(to) == "" {
				return writeErr(cmd, errors.New("missing --to (backup file)"))
			}
			env, err := resolve(a)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer env.Close()
			if env.Local == nil {
				return writeErr(cmd, errNeedsLocal)
			}
			recs, err := env.Local.Export(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := store.WriteJSONL(to, recs); err != nil {
				return writeErr(cmd, err)
			}
			env.Log.Info("backup exported", "path", to, "records", len(recs))
			return writeOut(cmd, a, map[string]any{"path": to, "records": len(recs)})
		},
	}
	export.Flags().StringVar(&to, "to", "", "Backup file to write")

	var from string
	restore := &cobra.Command{
		Use:   "import",
		Short: "Replace the local database with a JSONL backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(from) == "" {
				return writeErr(cmd, errors.New("missing --from (backup file)"))
			}
			recs, err := store.ReadJSONL(from)
			if err != nil {
				return writeErr(cmd, err)
			}
			env, err := resolve(a)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer env.Close()
			if env.Local == nil {
				return writeErr(cmd, errNeedsLocal)
			}
			if err := env.Local.Replace(cmd.Context(), recs); err != nil {
				return writeErr(cmd, err)
			}
			env.Log.Info("backup imported", "path", from, "records", len(recs))
			return writeOut(cmd, a, map[string]any{"path": from, "records": len(recs)})
		},
	}
	restore.Flags().StringVar(&from, "from", "", "Backup file to read")

	cmd.AddCommand(export, restore)
	return cmd
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folio-labs/folio-go/internal/platform/postgres"
)

func migrateCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations (DATABASE_URL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				names, err := postgres.MigrationNames(postgres.Migrations())
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			cfg, err := postgres.ConfigFromEnv()
			if err != nil {
				return err
			}
			db, err := postgres.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			applied, err := postgres.Migrate(cmd.Context(), db, postgres.Migrations())
			if err != nil {
				return err
			}
			logger.Info("migrations applied", "count", len(applied), "names", applied)
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(applied))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list embedded migrations without connecting")
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/cadmdt/pkg/config"
	"github.com/platinummonkey/cadmdt/pkg/storage"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  "Applies the embedded goose migrations for CADMDT_DATABASE_DRIVER to CADMDT_DATABASE_URL.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			cfg.Storage.Migrate = true

			db, err := storage.Open(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer db.Close()

			v, err := storage.MigrationVersion(db, cfg.Storage.Driver)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (%s)\n", v, cfg.Storage.Driver)
			return nil
		},
	}
}

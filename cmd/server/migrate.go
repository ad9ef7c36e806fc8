package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/ar_furniture/internal/repo"
	"github.com/Skotchmaster/ar_furniture/pkg/config"
	pkgdb "github.com/Skotchmaster/ar_furniture/pkg/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger := setup()
		config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pkgdb.Close(db)

		if err := repo.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrate_done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

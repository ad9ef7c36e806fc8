package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/ar_furniture/internal/events"
	"github.com/Skotchmaster/ar_furniture/internal/repo"
	"github.com/Skotchmaster/ar_furniture/internal/service"
	"github.com/Skotchmaster/ar_furniture/pkg/config"
	pkgdb "github.com/Skotchmaster/ar_furniture/pkg/db"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
)

var (
	adminUsername string
	adminPassword string
)

// createAdminCmd is safe to run on every deploy: an existing admin is left as is.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account if it does not exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger := setup()
		config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

		ctx := logging.IntoContext(cmd.Context(), logger)
		db, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer pkgdb.Close(db)

		if err := repo.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		auth := service.NewAuthService(&repo.GormRepo{DB: db}, events.Noop{}, cfg.JWTSecret)
		created, err := auth.EnsureAdmin(ctx, adminUsername, adminPassword)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "admin %q created\n", adminUsername)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "admin %q already exists\n", adminUsername)
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "admin username")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}

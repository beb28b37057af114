package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/stationscore/internal/config"
	pgstorage "github.com/mcoot/stationscore/internal/storage/postgres"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var databaseURL string

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply or roll back the PostgreSQL schema",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL != "" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			databaseURL = cfg.DatabaseURL
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (env: DATABASE_URL)")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := pgstorage.Migrate(databaseURL)
			if err != nil {
				return err
			}
			if applied {
				logger.Info("migrations applied")
			} else {
				logger.Info("schema already up to date")
			}
			return nil
		},
	})

	var confirm bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping all data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to drop the schema without --yes")
			}
			if err := pgstorage.MigrateDown(databaseURL); err != nil {
				return err
			}
			logger.Info("migrations rolled back")
			return nil
		},
	}
	down.Flags().BoolVar(&confirm, "yes", false, "Confirm dropping all data")
	root.AddCommand(down)

	if err := root.Execute(); err != nil {
		logger.Error("migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

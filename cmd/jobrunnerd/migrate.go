package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srcf/controlplane/internal/config"
	"github.com/srcf/controlplane/internal/store"
	"github.com/srcf/controlplane/pkg/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "apply pending control-plane database migrations and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("jobrunnerd: %w", err)
	}

	pool, err := db.Open(ctx, cfg.StoreDSN, db.WithMigrations(store.MigrationsFS))
	if err != nil {
		return fmt.Errorf("jobrunnerd: migrate: %w", err)
	}
	defer pool.Close()

	fmt.Println("migrations applied")
	return nil
}

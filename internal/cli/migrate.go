package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwhitworth/stagehand/internal/config"
	"github.com/mwhitworth/stagehand/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Run:   runMigrate,
}

func runMigrate(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		exitError("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(context.Background(), db); err != nil {
		exitError("run migrations: %v", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Database schema is up to date: %s\n", cfg.DBPath)
}

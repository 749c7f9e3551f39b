package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwhitworth/stagehand/internal/catalog"
	"github.com/mwhitworth/stagehand/internal/config"
	"github.com/mwhitworth/stagehand/internal/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog into the database",
	Long: `Load the demo music catalog into the database. Seeding is skipped
when the database already contains resources.`,
	Run: runSeed,
}

func runSeed(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		exitError("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		exitError("run migrations: %v", err)
	}
	if err := catalog.Seed(ctx, db); err != nil {
		exitError("seed data: %v", err)
	}

	green := color.New(color.FgGreen)
	green.Println("Seed data loaded.")
}

// Command migrate applies the schema and rewrites legacy foreign keys to
// native ids. It is safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/legacy"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/logging"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	batch := flag.Int("batch", 500, "rows per page")
	skipSchema := flag.Bool("skip-schema", false, "do not run AutoMigrate first")
	flag.Parse()

	logging.Setup()
	cfg := config.Load()

	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if !*skipSchema {
		if err := database.Migrate(database.DB); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		slog.Info("schema migrated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := legacy.NewResolver(database.DB).DryRun(*dryRun).BatchSize(*batch).Run(ctx)
	if err != nil {
		slog.Error("legacy reference rewrite failed", "error", err)
		os.Exit(1)
	}

	for _, t := range report.Tables {
		slog.Info("table processed", "table", t.Table, "scanned", t.Scanned, "patched", t.Patched, "failed", t.Failed)
	}
	slog.Info("legacy reference rewrite finished", "dry_run", report.DryRun, "patched", report.Patched())
}

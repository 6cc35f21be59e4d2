package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dew-13/solestyle/internal/config"
	"github.com/dew-13/solestyle/internal/database"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if len(os.Args) < 2 {
		logger.Error("usage: go run scripts/run_migrations.go [up|down]")
		os.Exit(2)
	}
	direction := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load_config", "err", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logger.Error("connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	files, err := database.Migrate(context.Background(), db, "migrations", direction)
	if err != nil {
		logger.Error("migrate", "direction", direction, "err", err)
		os.Exit(1)
	}

	for _, f := range files {
		logger.Info("migration_applied", "file", f)
	}
	logger.Info("migrations_done", "count", len(files), "direction", direction)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/samirrijal/fleetview/internal/adapters/postgres"
	"github.com/samirrijal/fleetview/internal/pkg/config"
	"github.com/samirrijal/fleetview/internal/pkg/logging"
)

var upFiles = []string{
	"migrations/001_init_extensions.sql",
	"migrations/002_core_tables.sql",
	"migrations/003_geofence_alerts.sql",
}

const downFile = "migrations/000_down.sql"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate <up|down>")
		os.Exit(2)
	}

	cfg, err := config.Load("fleetview-migrate")
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Error("db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var files []string
	switch os.Args[1] {
	case "up":
		files = upFiles
	case "down":
		files = []string{downFile}
	default:
		slog.Error("unknown command", "command", os.Args[1])
		os.Exit(2)
	}

	if err := apply(ctx, db, files); err != nil {
		slog.Error("migrate", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied", "direction", os.Args[1], "files", len(files))
}

func apply(ctx context.Context, db *postgres.DB, files []string) error {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		slog.Info("applied", "file", f)
	}
	return nil
}

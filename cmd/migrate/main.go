package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pressly/goose/v3"

	"libraryapi/internal/config"
	"libraryapi/internal/platform/database"
	"libraryapi/internal/platform/logging"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	logger := logging.Init(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "text"})
	if err := run(context.Background(), logger, *command, *name); err != nil {
		logger.Error("migrate failed", "command", *command, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, command, name string) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	if command == "create" {
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		goose.SetBaseFS(nil)
		dir := migrationsDir(cfg.Driver)
		if err := goose.Create(nil, dir, name, "sql"); err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		logger.Info("migration created", "name", name, "dir", dir)
		return nil
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Prepare(db, logger); err != nil {
		return err
	}
	fsys, dir := migrationsSource(cfg.Driver)
	goose.SetBaseFS(fsys)

	switch command {
	case "up":
		if err := goose.UpContext(ctx, db.SQL, dir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations applied successfully")
	case "down":
		if err := goose.DownContext(ctx, db.SQL, dir); err != nil {
			return fmt.Errorf("rollback migrations: %w", err)
		}
		logger.Info("migrations rolled back successfully")
	case "status":
		if err := goose.StatusContext(ctx, db.SQL, dir); err != nil {
			return fmt.Errorf("check migration status: %w", err)
		}
	default:
		return fmt.Errorf("unknown command: %s. Use: up, down, status, create", command)
	}
	return nil
}

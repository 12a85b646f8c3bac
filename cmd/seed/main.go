package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"libraryapi/internal/config"
	"libraryapi/internal/platform/database"
	"libraryapi/internal/platform/logging"
	"libraryapi/internal/server"
)

func main() {
	count := flag.Int("count", 0, "number of generated books to add after the sample catalog")
	flag.Parse()

	logger := logging.Init(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "text"})
	if err := run(context.Background(), logger, *count); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, count int) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, logger); err != nil {
		return err
	}

	repos := server.NewRepositories(db, cfg.QueryTimeout)
	s := &seeder{
		authors: repos.Authors,
		books:   repos.Books,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger,
	}
	summary, err := s.Seed(ctx, count)
	if err != nil {
		return err
	}
	logger.Info("seed complete", "authors", summary.Authors, "books", summary.Books)
	return nil
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"libraryapi/internal/auth"
	"libraryapi/internal/author"
	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/httpx"
	"libraryapi/internal/platform/database"
	"libraryapi/internal/platform/logging"
	"libraryapi/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connection OK", "driver", db.Driver, "dsn", database.RedactDSN(cfg.Database.DSN))

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, logger); err != nil {
			return err
		}
	}

	repos := server.NewRepositories(db, cfg.Database.QueryTimeout)

	authService, err := auth.NewService(cfg.Auth)
	if err != nil {
		return err
	}

	var loginLimiter *httpx.RateLimitMiddleware
	if cfg.Server.LoginRateLimitRPS > 0 {
		loginLimiter = httpx.NewRateLimitMiddleware(ctx, cfg.Server.LoginRateLimitRPS, cfg.Server.LoginRateLimitBurst).
			WithTrustedProxies(cfg.Server.TrustedProxies)
	}

	router := server.NewRouter(server.Deps{
		Config:       cfg.Server,
		Secret:       cfg.Auth.JWTSecret,
		DB:           db,
		Logger:       logger,
		Auth:         auth.NewHTTPHandler(authService, logger),
		Books:        book.NewHTTPHandler(book.NewService(repos.Books), logger),
		Authors:      author.NewHTTPHandler(author.NewService(repos.Authors), logger),
		LoginLimiter: loginLimiter,
	})
	httpServer := server.New(cfg.Server.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

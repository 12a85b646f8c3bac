// Package database opens the configured store and applies the embedded
// goose migrations to it.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	migrations "libraryapi/db"
	"libraryapi/internal/config"
)

const pingTimeout = 2 * time.Second

// DB is an open handle to either store. SQL is always set; for PostgreSQL it
// is a database/sql view over Pool, used by goose.
type DB struct {
	Driver string
	SQL    *sql.DB
	Pool   *pgxpool.Pool
}

func Open(ctx context.Context, cfg config.Database) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.DSN)
	case config.DriverSQLite, "":
		return openSQLite(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openSQLite(ctx context.Context, dsn string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", SQLiteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", dsn, err)
	}
	return &DB{Driver: config.DriverSQLite, SQL: sqlDB}, nil
}

func openPostgres(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database (%s): %w", RedactDSN(dsn), err)
	}
	return &DB{Driver: config.DriverPostgres, SQL: stdlib.OpenDBFromPool(pool), Pool: pool}, nil
}

// SQLiteDSN turns on foreign keys and a busy timeout unless the caller
// already chose them.
func SQLiteDSN(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "_foreign_keys") && !strings.Contains(dsn, "_fk=") {
		params = append(params, "_foreign_keys=on")
	}
	if !strings.Contains(dsn, "_busy_timeout") && !strings.Contains(dsn, "_timeout=") {
		params = append(params, "_busy_timeout=5000")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func (d *DB) Ping(ctx context.Context) error {
	if d.Pool != nil {
		return d.Pool.Ping(ctx)
	}
	return d.SQL.PingContext(ctx)
}

func (d *DB) Close() error {
	err := d.SQL.Close()
	if d.Pool != nil {
		d.Pool.Close()
	}
	return err
}

// Dialect is the goose dialect name for the handle's driver.
func (d *DB) Dialect() string {
	if d.Driver == config.DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, d *DB, logger *slog.Logger) error {
	if err := Prepare(d, logger); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, d.SQL, migrations.MigrationsDir(d.Driver)); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Prepare points goose at the embedded migrations for d's dialect.
func Prepare(d *DB, logger *slog.Logger) error {
	if d == nil || d.SQL == nil {
		return errors.New("database handle is not open")
	}
	if logger != nil {
		goose.SetLogger(gooseLogger{logger: logger.With("component", "migrate")})
	}
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(d.Dialect()); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// RedactDSN hides credentials in a URL-style DSN.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}

type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}

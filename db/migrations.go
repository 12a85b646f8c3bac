// Package db holds the SQL migrations for every supported dialect.
package db

import "embed"

// Migrations contains migrations/sqlite and migrations/postgres.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var Migrations embed.FS

// MigrationsDir returns the directory inside Migrations for a driver name.
func MigrationsDir(driver string) string {
	if driver == "postgres" {
		return "migrations/postgres"
	}
	return "migrations/sqlite"
}

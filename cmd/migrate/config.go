package main

import (
	"io/fs"
	"os"
	"path/filepath"

	migrations "libraryapi/db"
)

// migrationsSource returns the filesystem goose reads from and the directory
// within it. MIGRATIONS_DIR switches from the embedded files to disk.
func migrationsSource(driver string) (fs.FS, string) {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return nil, v
	}
	return migrations.Migrations, migrations.MigrationsDir(driver)
}

// migrationsDir is where "create" writes new files.
func migrationsDir(driver string) string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("db", migrations.MigrationsDir(driver))
}

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"libraryapi/internal/config"
)

func TestMigrationsSource_EnvOverride(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "/custom/migrations")

	fsys, dir := migrationsSource(config.DriverSQLite)
	assert.Nil(t, fsys)
	assert.Equal(t, "/custom/migrations", dir)
	assert.Equal(t, "/custom/migrations", migrationsDir(config.DriverPostgres))
}

func TestMigrationsSource_Default(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "")

	fsys, dir := migrationsSource(config.DriverPostgres)
	assert.NotNil(t, fsys)
	assert.Equal(t, "migrations/postgres", dir)
	assert.Equal(t, filepath.Join("db", "migrations", "sqlite"), migrationsDir(config.DriverSQLite))
}


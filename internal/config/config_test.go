package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LIBRARY_CONFIG", "APP_ADDR", "CORS_ALLOWED_ORIGINS", "DB_DRIVER", "DB_DSN", "DB_QUERY_TIMEOUT",
		"DB_AUTO_MIGRATE", "AUTH_USERNAME", "AUTH_PASSWORD", "JWT_SECRET", "JWT_TTL", "LOG_LEVEL",
		"LOG_FORMAT", "MAX_BODY_BYTES", "ENABLE_HSTS", "LOGIN_RATE_LIMIT_RPS", "LOGIN_RATE_LIMIT_BURST",
		"TRUSTED_PROXIES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "library.db", cfg.Database.DSN)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "admin", cfg.Auth.Username)
	assert.Equal(t, "password", cfg.Auth.Password)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoad_MissingSecret(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DB_DSN", "postgres://u:p@localhost:5432/library")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("LOGIN_RATE_LIMIT_RPS", "0")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Zero(t, cfg.Server.LoginRateLimitRPS)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, []string{"10.0.0.1"}, cfg.Server.TrustedProxies)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("DB_DRIVER", "mysql")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("JWT_TTL", "soon")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("JWT_TTL", "-1m")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoad_TOMLFileUnderEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "library.toml")
	content := `
[server]
addr = ":7070"

[database]
dsn = "catalog.db"
query_timeout = "2s"

[auth]
username = "librarian"
jwt_secret = "from-file"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("LIBRARY_CONFIG", path)
	t.Setenv("APP_ADDR", ":6060")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":6060", cfg.Server.Addr, "env wins over file")
	assert.Equal(t, "catalog.db", cfg.Database.DSN)
	assert.Equal(t, 2*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "librarian", cfg.Auth.Username)
	assert.Equal(t, "password", cfg.Auth.Password, "defaults survive a partial file")
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("JWT_SECRET=from_file\nDB_DSN=from_file.db\n"), 0o644))

	t.Setenv("DB_DSN", "from_env.db")
	// godotenv only fills variables that are absent, not empty ones.
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() {
		_ = os.Chdir(cwd)
		_ = os.Unsetenv("JWT_SECRET")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from_env.db", cfg.Database.DSN)
	assert.Equal(t, "from_file", cfg.Auth.JWTSecret)
}

func TestLoadDatabase_NoSecretNeeded(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://u:p@localhost:5432/library")

	db, err := LoadDatabase()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, db.Driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/library", db.DSN)

	t.Setenv("DB_DRIVER", "oracle")
	_, err = LoadDatabase()
	assert.Error(t, err)
}

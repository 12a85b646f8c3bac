package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrMissingSecret = errors.New("missing required JWT secret (JWT_SECRET)")

// Config is built once in main and handed to every constructor that needs it.
type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	Auth     Auth     `toml:"auth"`
	Log      Log      `toml:"log"`
}

type Server struct {
	Addr                string   `toml:"addr"`
	AllowedOrigins      []string `toml:"allowed_origins"`
	MaxBodyBytes        int64    `toml:"max_body_bytes"`
	EnableHSTS          bool     `toml:"enable_hsts"`
	LoginRateLimitRPS   float64  `toml:"login_rate_limit_rps"`
	LoginRateLimitBurst int      `toml:"login_rate_limit_burst"`
	// TrustedProxies are peer addresses allowed to set X-Forwarded-For.
	TrustedProxies      []string `toml:"trusted_proxies"`
}

type Database struct {
	Driver       string        `toml:"driver"`
	DSN          string        `toml:"dsn"`
	QueryTimeout time.Duration `toml:"query_timeout"`
	AutoMigrate  bool          `toml:"auto_migrate"`
}

// Auth holds the single static identity allowed to log in.
type Auth struct {
	Username  string        `toml:"username"`
	Password  string        `toml:"password"`
	JWTSecret string        `toml:"jwt_secret"`
	TokenTTL  time.Duration `toml:"token_ttl"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: Server{
			Addr:                ":8080",
			MaxBodyBytes:        1 << 20,
			LoginRateLimitRPS:   5,
			LoginRateLimitBurst: 10,
		},
		Database: Database{
			Driver:       DriverSQLite,
			DSN:          "library.db",
			QueryTimeout: 5 * time.Second,
			AutoMigrate:  true,
		},
		Auth: Auth{
			Username: "admin",
			Password: "password",
			TokenTTL: 15 * time.Minute,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads .env files, the optional TOML file named by LIBRARY_CONFIG and
// finally the process environment, in increasing order of precedence.
func Load() (Config, error) {
	cfg, err := load()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDatabase resolves configuration like Load but validates only the
// database section, for tools that never issue tokens.
func LoadDatabase() (Database, error) {
	cfg, err := load()
	if err != nil {
		return Database{}, err
	}
	if err := cfg.Database.Validate(); err != nil {
		return Database{}, err
	}
	return cfg.Database, nil
}

func load() (Config, error) {
	// godotenv never overrides variables already set by the runtime.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := Default()
	if path := os.Getenv("LIBRARY_CONFIG"); path != "" {
		if err := LoadTOML(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg; keys absent from the file keep their value.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with any recognised environment variable.
func (c *Config) ApplyEnv() error {
	c.Server.Addr = getEnv("APP_ADDR", c.Server.Addr)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		c.Server.TrustedProxies = splitList(v)
	}
	c.Database.Driver = strings.ToLower(getEnv("DB_DRIVER", c.Database.Driver))
	c.Database.DSN = getEnv("DB_DSN", c.Database.DSN)
	c.Auth.Username = getEnv("AUTH_USERNAME", c.Auth.Username)
	c.Auth.Password = getEnv("AUTH_PASSWORD", c.Auth.Password)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	var err error
	if c.Server.MaxBodyBytes, err = getInt64("MAX_BODY_BYTES", c.Server.MaxBodyBytes); err != nil {
		return err
	}
	if c.Server.EnableHSTS, err = getBool("ENABLE_HSTS", c.Server.EnableHSTS); err != nil {
		return err
	}
	if c.Server.LoginRateLimitRPS, err = getFloat("LOGIN_RATE_LIMIT_RPS", c.Server.LoginRateLimitRPS); err != nil {
		return err
	}
	burst, err := getInt64("LOGIN_RATE_LIMIT_BURST", int64(c.Server.LoginRateLimitBurst))
	if err != nil {
		return err
	}
	c.Server.LoginRateLimitBurst = int(burst)
	if c.Database.QueryTimeout, err = getDuration("DB_QUERY_TIMEOUT", c.Database.QueryTimeout); err != nil {
		return err
	}
	if c.Database.AutoMigrate, err = getBool("DB_AUTO_MIGRATE", c.Database.AutoMigrate); err != nil {
		return err
	}
	if c.Auth.TokenTTL, err = getDuration("JWT_TTL", c.Auth.TokenTTL); err != nil {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.Auth.Username == "" || c.Auth.Password == "" {
		return errors.New("auth username and password must be set")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return c.Database.Validate()
}

func (d Database) Validate() error {
	switch d.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q (want %s or %s)", d.Driver, DriverSQLite, DriverPostgres)
	}
	if d.DSN == "" {
		return errors.New("database dsn must be set")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds the server configuration
type Config struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"8080"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`
	DatabaseURL string `env:"DATABASE_URL"`
	// MigrateOnStart applies pending migrations before serving (postgres only)
	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"true"`

	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionPurgeInterval time.Duration `env:"SESSION_PURGE_INTERVAL" envDefault:"10m"`
	// BalanceAuditInterval is how often cached balances are checked against the ledger; 0 disables
	BalanceAuditInterval time.Duration `env:"BALANCE_AUDIT_INTERVAL" envDefault:"15m"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// RealtimeRelay fans station notifications out to other instances over Redis pub/sub
	RealtimeRelay bool `env:"REALTIME_RELAY"`

	BootstrapAdmin BootstrapAdmin `envPrefix:"BOOTSTRAP_ADMIN_"`
}

// BootstrapAdmin is the administrator created on startup when none exists
type BootstrapAdmin struct {
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

// Enabled reports whether bootstrap credentials were supplied
func (b BootstrapAdmin) Enabled() bool {
	return b.Username != ""
}

// Load reads an optional .env file, then parses the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return Parse(env.Options{})
}

// Parse parses configuration with the given options; tests pass an explicit Environment
func Parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the settings fit together
func (c *Config) Validate() error {
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis or postgres", c.StorageType)
	}

	if c.RealtimeRelay && c.RedisURL == "" {
		return errors.New("REDIS_URL required when REALTIME_RELAY is enabled")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.SessionPurgeInterval <= 0 {
		return errors.New("SESSION_PURGE_INTERVAL must be positive")
	}
	if c.BalanceAuditInterval < 0 {
		return errors.New("BALANCE_AUDIT_INTERVAL must not be negative")
	}
	if c.BootstrapAdmin.Enabled() && c.BootstrapAdmin.Password == "" {
		return errors.New("BOOTSTRAP_ADMIN_PASSWORD required with BOOTSTRAP_ADMIN_USERNAME")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel converts LogLevel into a slog level
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

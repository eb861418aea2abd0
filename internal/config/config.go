// Package config reads the process configuration from the environment. A .env
// file in the working directory is loaded first but never overrides variables
// that are already set.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSheets   = "sheets"

	LockNone  = "none"
	LockRedis = "redis"
)

type Config struct {
	Backend  string `env:"STORE_BACKEND" env-default:"postgres"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	Database DatabaseConfig
	Sheets   SheetsConfig
	Lock     LockConfig

	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" env-default:"15m"`
	ExportDir         string        `env:"EXPORT_DIR" env-default:"."`
}

type DatabaseConfig struct {
	URL           string `env:"DATABASE_URL"`
	MigrationsDir string `env:"MIGRATIONS_DIR" env-default:"migrations"`
}

// SheetsConfig takes credentials either inline or from a file; inline wins.
type SheetsConfig struct {
	SpreadsheetID   string `env:"SHEETS_SPREADSHEET_ID"`
	CredentialsJSON string `env:"GOOGLE_SHEETS_CREDENTIALS_JSON"`
	CredentialsFile string `env:"GOOGLE_SHEETS_CREDENTIALS_FILE"`
	// RequestsPerMinute throttles API calls below the Sheets quota; 0 disables.
	RequestsPerMinute int `env:"SHEETS_REQUESTS_PER_MINUTE" env-default:"55"`
}

// LockConfig controls the optional per-item lock around stock adjustments.
type LockConfig struct {
	Mode         string        `env:"STOCK_LOCK" env-default:"none"`
	RedisAddress string        `env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	TTL          time.Duration `env:"STOCK_LOCK_TTL" env-default:"5s"`
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Lock.Mode = strings.ToLower(strings.TrimSpace(cfg.Lock.Mode))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendSheets:
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("SHEETS_SPREADSHEET_ID is required for the sheets backend")
		}
		if c.Sheets.CredentialsJSON == "" && c.Sheets.CredentialsFile == "" {
			return fmt.Errorf("GOOGLE_SHEETS_CREDENTIALS_JSON or GOOGLE_SHEETS_CREDENTIALS_FILE is required for the sheets backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Backend)
	}

	switch c.Lock.Mode {
	case LockNone, "":
	case LockRedis:
		if c.Lock.TTL <= 0 {
			return fmt.Errorf("STOCK_LOCK_TTL must be positive")
		}
	default:
		return fmt.Errorf("unknown STOCK_LOCK %q", c.Lock.Mode)
	}

	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be positive")
	}
	return nil
}

// Package config loads server settings from an optional .env file, an
// optional YAML file and the environment, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// NoForcedSlot disables the forced outcome.
const NoForcedSlot = -1

// Config holds the server settings.
type Config struct {
	Addr            string          `yaml:"addr"`
	DBDriver        string          `yaml:"db_driver"`
	DBPath          string          `yaml:"db_path"`
	PostgresDSN     string          `yaml:"postgres_dsn"`
	JWTSecret       string          `yaml:"jwt_secret"`
	TokenTTL        time.Duration   `yaml:"token_ttl"`
	TableID         string          `yaml:"table_id"`
	StartingBalance decimal.Decimal `yaml:"starting_balance"`
	ForcedSlot      int             `yaml:"forced_slot"`
	LogLevel        string          `yaml:"log_level"`
	LogFormat       string          `yaml:"log_format"`
}

// Default returns the development defaults.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		DBDriver:        DriverSQLite,
		DBPath:          "./data/roulette.db",
		JWTSecret:       "dev-secret-change-me",
		TokenTTL:        24 * time.Hour,
		TableID:         "main",
		StartingBalance: decimal.NewFromInt(100),
		ForcedSlot:      NoForcedSlot,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (c *Config) applyEnv() error {
	c.Addr = getEnv("ADDR", c.Addr)
	c.DBDriver = strings.ToLower(getEnv("DB_DRIVER", c.DBDriver))
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.PostgresDSN = getEnv("POSTGRES_DSN", c.PostgresDSN)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.TableID = getEnv("TABLE_ID", c.TableID)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		c.TokenTTL = ttl
	}
	if v := os.Getenv("STARTING_BALANCE"); v != "" {
		balance, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("invalid STARTING_BALANCE %q: %w", v, err)
		}
		c.StartingBalance = balance
	}
	if v := os.Getenv("ROULETTE_FORCED_SLOT"); v != "" {
		slot, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ROULETTE_FORCED_SLOT %q: %w", v, err)
		}
		c.ForcedSlot = slot
	}
	return nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for sqlite")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for postgres")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.StartingBalance.IsNegative() {
		return errors.New("STARTING_BALANCE must not be negative")
	}
	if c.ForcedSlot != NoForcedSlot && (c.ForcedSlot < 0 || c.ForcedSlot > 36) {
		return fmt.Errorf("ROULETTE_FORCED_SLOT %d out of range", c.ForcedSlot)
	}
	return nil
}

// Forced reports the forced slot, if any.
func (c *Config) Forced() (int, bool) {
	return c.ForcedSlot, c.ForcedSlot != NoForcedSlot
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var envKeys = []string{
	"CONFIG_FILE", "ADDR", "DB_DRIVER", "DB_PATH", "POSTGRES_DSN", "JWT_SECRET",
	"TOKEN_TTL", "TABLE_ID", "STARTING_BALANCE", "ROULETTE_FORCED_SLOT", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.DBDriver != DriverSQLite || cfg.TableID != "main" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.StartingBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("StartingBalance = %s, want 100", cfg.StartingBalance)
	}
	if _, ok := cfg.Forced(); ok {
		t.Error("expected no forced slot by default")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "roulette.yaml")
	data := []byte(`addr: ":9090"
table_id: vip
token_ttl: 2h
starting_balance: "250.50"
forced_slot: 7
log_format: json
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TABLE_ID", "high-rollers")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.TableID != "high-rollers" {
		t.Errorf("TableID = %q, env should win over file", cfg.TableID)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %v, want 2h", cfg.TokenTTL)
	}
	if !cfg.StartingBalance.Equal(decimal.RequireFromString("250.50")) {
		t.Errorf("StartingBalance = %s, want 250.50", cfg.StartingBalance)
	}
	if slot, ok := cfg.Forced(); !ok || slot != 7 {
		t.Errorf("Forced() = %d, %v, want 7, true", slot, ok)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad ttl", map[string]string{"TOKEN_TTL": "soon"}},
		{"zero ttl", map[string]string{"TOKEN_TTL": "0s"}},
		{"bad balance", map[string]string{"STARTING_BALANCE": "lots"}},
		{"negative balance", map[string]string{"STARTING_BALANCE": "-1"}},
		{"slot out of range", map[string]string{"ROULETTE_FORCED_SLOT": "37"}},
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}},
		{"postgres without dsn", map[string]string{"DB_DRIVER": "postgres"}},
		{"missing config file", map[string]string{"CONFIG_FILE": "/nonexistent/roulette.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

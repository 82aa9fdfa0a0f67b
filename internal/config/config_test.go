package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:               "8081",
		DataBackend:        "memory",
		SlotKey:            "transactions",
		SlotDir:            "./data",
		RateLimitPerMinute: 60,
		LogLevel:           "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid memory backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "valid file backend config",
			mutate: func(c *Config) {
				c.DataBackend = "file"
				c.SlotDir = t.TempDir()
			},
			wantErr: false,
		},
		{
			name: "valid sqlite backend config",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = filepath.Join(t.TempDir(), "db", "kakeibo.db")
			},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [memory file sqlite]",
		},
		{
			name:        "empty slot key",
			mutate:      func(c *Config) { c.SlotKey = " " },
			wantErr:     true,
			errorString: "slot key cannot be empty",
		},
		{
			name:        "slot key with separator",
			mutate:      func(c *Config) { c.SlotKey = "../etc" },
			wantErr:     true,
			errorString: "must not contain path separators",
		},
		{
			name: "file backend missing directory",
			mutate: func(c *Config) {
				c.DataBackend = "file"
				c.SlotDir = ""
			},
			wantErr:     true,
			errorString: "slot directory cannot be empty when using file backend",
		},
		{
			name: "sqlite backend missing database path",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = ""
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name:        "missing seed file",
			mutate:      func(c *Config) { c.SeedFile = "/non/existent/seed.json" },
			wantErr:     true,
			errorString: "seed file does not exist",
		},
		{
			name:        "invalid timezone",
			mutate:      func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantErr:     true,
			errorString: "invalid timezone 'Mars/Olympus'",
		},
		{
			name:        "invalid rate limit",
			mutate:      func(c *Config) { c.RateLimitPerMinute = 0 },
			wantErr:     true,
			errorString: "invalid rate limit 0: must be at least 1",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			wantErr:     true,
			errorString: "invalid log level 'loud'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.DataBackend = "nope"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid port") || !strings.Contains(err.Error(), "invalid data backend") {
		t.Errorf("expected both problems reported, got %v", err)
	}
}

func TestConfig_SeedFileExists(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(seed, []byte(`[]`), 0644); err != nil {
		t.Fatalf("Failed to create seed file: %v", err)
	}
	cfg := validConfig()
	cfg.SeedFile = seed
	if err := cfg.Validate(); err != nil {
		t.Errorf("Config.Validate() error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_BACKEND", "SLOT_KEY", "SLOT_DIR", "SQLITE_DB_PATH", "STRICT_SLOT",
		"LEDGER_TIMEZONE", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_PER_MINUTE", "LOG_LEVEL", "SEED_FILE"} {
		t.Setenv(key, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataBackend != "memory" {
			t.Errorf("Load() DataBackend = %v, want memory", cfg.DataBackend)
		}
		if cfg.SlotKey != "transactions" {
			t.Errorf("Load() SlotKey = %v, want transactions", cfg.SlotKey)
		}
		if cfg.SQLiteDBPath != "./data/kakeibo.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/kakeibo.db", cfg.SQLiteDBPath)
		}
		if cfg.StrictSlot {
			t.Errorf("Load() StrictSlot = true, want false")
		}
		if cfg.RateLimitPerMinute != 60 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 60", cfg.RateLimitPerMinute)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("defaults should validate: %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_BACKEND", "file")
		t.Setenv("SLOT_KEY", "ledger")
		t.Setenv("STRICT_SLOT", "true")
		t.Setenv("LEDGER_TIMEZONE", "UTC")
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, http://example.com ,")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
		t.Setenv("LOG_LEVEL", "debug")

		cfg := Load()

		if cfg.Port != "9090" || cfg.DataBackend != "file" || cfg.SlotKey != "ledger" {
			t.Errorf("Load() = %+v", cfg)
		}
		if !cfg.StrictSlot {
			t.Errorf("Load() StrictSlot = false, want true")
		}
		if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://example.com" {
			t.Errorf("Load() CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
		}
		if cfg.RateLimitPerMinute != 5 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 5", cfg.RateLimitPerMinute)
		}
		loc, err := cfg.Location()
		if err != nil || loc != time.UTC {
			t.Errorf("Location() = %v, %v", loc, err)
		}
		level, err := cfg.Level()
		if err != nil || level != slog.LevelDebug {
			t.Errorf("Level() = %v, %v", level, err)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_PER_MINUTE", "invalid")
		t.Setenv("STRICT_SLOT", "maybe")

		cfg := Load()

		if cfg.RateLimitPerMinute != 60 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 60 (default for invalid input)", cfg.RateLimitPerMinute)
		}
		if cfg.StrictSlot {
			t.Errorf("Load() StrictSlot = true, want false (default for invalid input)")
		}
	})
}

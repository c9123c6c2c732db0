// Package config loads runtime settings from the environment.
//
// Variables use the CATALOG_ prefix, e.g. CATALOG_DATABASE_DSN. A .env
// file in the working directory is picked up automatically.
package config

import (
	"fmt"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CATALOG_"

type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `koanf:"driver"`
	// DSN is a file path for sqlite or a connection string for postgres.
	DSN             string `koanf:"dsn"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"` // minutes
}

type LogConfig struct {
	Level string `koanf:"level"`
	// TraceSQL enables statement logging on the gorm side.
	TraceSQL bool `koanf:"trace_sql"`
}

func defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "book_catalog.db",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads CATALOG_* environment variables over the built-in defaults.
func Load() (*Config, error) {
	cfg := defaults()

	k := koanf.New(".")
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Database.Driver != "sqlite" && cfg.Database.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	return &cfg, nil
}

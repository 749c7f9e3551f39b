// Package config loads server configuration from an optional TOML file and
// the environment. Environment variables override file values.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds application configuration.
type Config struct {
	Addr      string `toml:"addr"`       // STAGEHAND_ADDR, default ":8080"
	DBPath    string `toml:"db_path"`    // STAGEHAND_DB, default "stagehand.db"
	AuthToken string `toml:"auth_token"` // STAGEHAND_AUTH_TOKEN, optional
}

// Load builds the configuration: defaults, then the TOML file named by
// STAGEHAND_CONFIG (if any), then environment overrides.
func Load() (Config, error) {
	cfg := Config{
		Addr:   ":8080",
		DBPath: "stagehand.db",
	}

	if path := os.Getenv("STAGEHAND_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Addr = envOr("STAGEHAND_ADDR", cfg.Addr)
	cfg.DBPath = envOr("STAGEHAND_DB", cfg.DBPath)
	cfg.AuthToken = envOr("STAGEHAND_AUTH_TOKEN", cfg.AuthToken)

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

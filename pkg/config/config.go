// Package config loads server configuration from a TOML file with
// environment-variable overrides.
//
// Precedence, lowest to highest: built-in defaults, the TOML file,
// STICKYBOARD_* environment variables. Command-line flags sit on top of
// all three and are handled by the CLI layer.
package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/sqing33/stickyboard/pkg/errors"
	"github.com/sqing33/stickyboard/pkg/estimate"
)

// Config is the full server configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `toml:"listen"`

	// DatabaseURL is the Postgres connection string. Empty selects the
	// in-memory store.
	DatabaseURL string `toml:"database_url"`

	// RedisAddr enables the Redis cache and session backends when set.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	// SessionBackend selects where sessions live: memory, file, redis.
	SessionBackend string `toml:"session_backend"`

	// NoAuth maps every request to a fixed local owner. Development only.
	NoAuth bool `toml:"no_auth"`

	// Estimate is the default pixel environment for server-side sizing,
	// used when a create request does not carry the client's live value.
	Estimate estimate.Env `toml:"estimate"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:         ":8420",
		SessionBackend: "memory",
		Estimate:       estimate.Env{CellPx: 24, InsetPx: 4},
	}
}

// Load reads the TOML file at path (skipped when path is empty or the
// file does not exist) and applies environment overrides on top of the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, errors.Wrap(errors.CodeValidation, err, "parse config %s", path)
			}
		} else if !os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.CodeValidation, err, "read config %s", path)
		}
	}

	applyEnv(&cfg)

	if cfg.SessionBackend != "memory" && cfg.SessionBackend != "file" && cfg.SessionBackend != "redis" {
		return cfg, errors.New(errors.CodeValidation,
			"unknown session backend %q (memory, file, redis)", cfg.SessionBackend)
	}
	if cfg.SessionBackend == "redis" && cfg.RedisAddr == "" {
		return cfg, errors.New(errors.CodeValidation, "session backend redis requires redis_addr")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("STICKYBOARD_LISTEN", &cfg.Listen)
	setString("STICKYBOARD_DATABASE_URL", &cfg.DatabaseURL)
	setString("STICKYBOARD_REDIS_ADDR", &cfg.RedisAddr)
	setString("STICKYBOARD_REDIS_PASSWORD", &cfg.RedisPassword)
	setString("STICKYBOARD_SESSION_BACKEND", &cfg.SessionBackend)

	if v := os.Getenv("STICKYBOARD_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = db
		}
	}
	if v := os.Getenv("STICKYBOARD_NO_AUTH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.NoAuth = b
		}
	}
	if v := os.Getenv("STICKYBOARD_CELL_PX"); v != "" {
		if px, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Estimate.CellPx = px
		}
	}
	if v := os.Getenv("STICKYBOARD_INSET_PX"); v != "" {
		if px, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Estimate.InsetPx = px
		}
	}
}

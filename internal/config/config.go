// Package config loads service configuration from an optional TOML file,
// with environment variables taking precedence for deploy-time settings.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the full service configuration.
type Config struct {
	Port            string     `toml:"port"`
	DatabaseURL     string     `toml:"database_url"`
	RedisURL        string     `toml:"redis_url"`
	CacheTTLSeconds int        `toml:"cache_ttl_seconds"`
	MonteCarlo      MonteCarlo `toml:"monte_carlo"`
}

// MonteCarlo tunes the stochastic FIRE engine. MaxPaths caps what API
// callers may request.
type MonteCarlo struct {
	Paths      int     `toml:"paths"`
	MaxPaths   int     `toml:"max_paths"`
	Workers    int     `toml:"workers"`
	Volatility float64 `toml:"volatility"`
}

// Default returns the baked-in configuration.
func Default() Config {
	return Config{
		Port:            "8080",
		CacheTTLSeconds: 30,
		MonteCarlo: MonteCarlo{
			Paths:      1000,
			MaxPaths:   10000,
			Volatility: 0.15,
		},
	}
}

// Load reads the TOML file at path (skipped when path is empty), applies
// environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("MONTECARLO_PATHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MonteCarlo.Paths = n
		}
	}
	if v := os.Getenv("MONTECARLO_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MonteCarlo.Workers = n
		}
	}
}

func (c Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("config: port must not be empty")
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("config: cache_ttl_seconds must not be negative")
	}
	mc := c.MonteCarlo
	if mc.Paths <= 0 || mc.MaxPaths <= 0 || mc.Paths > mc.MaxPaths {
		return fmt.Errorf("config: monte_carlo paths %d must be within (0, %d]", mc.Paths, mc.MaxPaths)
	}
	if mc.Workers < 0 {
		return fmt.Errorf("config: monte_carlo workers must not be negative")
	}
	if mc.Volatility <= 0 {
		return fmt.Errorf("config: monte_carlo volatility must be positive")
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %s, want 8080", cfg.Port)
	}
	if cfg.MonteCarlo.Paths != 1000 || cfg.MonteCarlo.Volatility != 0.15 {
		t.Errorf("monte carlo defaults = %+v", cfg.MonteCarlo)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
port = "9090"
cache_ttl_seconds = 60

[monte_carlo]
paths = 2000
max_paths = 20000
workers = 4
volatility = 0.2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %s, want 9090", cfg.Port)
	}
	if cfg.CacheTTLSeconds != 60 {
		t.Errorf("cache ttl = %d, want 60", cfg.CacheTTLSeconds)
	}
	if cfg.MonteCarlo.Paths != 2000 || cfg.MonteCarlo.Workers != 4 {
		t.Errorf("monte carlo = %+v", cfg.MonteCarlo)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`port = "9090"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PORT", "7070")
	t.Setenv("MONTECARLO_PATHS", "500")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("port = %s, want env override 7070", cfg.Port)
	}
	if cfg.MonteCarlo.Paths != 500 {
		t.Errorf("paths = %d, want env override 500", cfg.MonteCarlo.Paths)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	bad := `
[monte_carlo]
paths = 50000
max_paths = 1000
`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for paths above max_paths")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.toml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

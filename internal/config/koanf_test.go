// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Tests that call Load use t.Setenv and therefore must not run in parallel.

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 5174 {
		t.Errorf("Server.Port = %d, want 5174", cfg.Server.Port)
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("Server.Environment = %q, want development", cfg.Server.Environment)
	}
	if cfg.API.DefaultPageSize != 10 || cfg.API.MaxPageSize != 50 {
		t.Errorf("API paging = %d/%d, want 10/50", cfg.API.DefaultPageSize, cfg.API.MaxPageSize)
	}
	if cfg.Database.Path != "/data/discograph.duckdb" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "http://localhost:5173" {
		t.Errorf("CORSOrigins = %v, want default dev origin", cfg.Security.CORSOrigins)
	}
	if cfg.IsProduction() {
		t.Error("IsProduction() = true for development defaults")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false with ENVIRONMENT=production")
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("Database.Path = %q, want :memory:", cfg.Database.Path)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Security.CORSOrigins) != 2 ||
		cfg.Security.CORSOrigins[0] != want[0] || cfg.Security.CORSOrigins[1] != want[1] {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Security.RateLimitWindow != 30*time.Second {
		t.Errorf("RateLimitWindow = %s, want 30s", cfg.Security.RateLimitWindow)
	}
}

func TestLoadLegacyEnvNames(t *testing.T) {
	// Older deployments used PORT and CLIENT_URL; both still work.
	t.Setenv("PORT", "5050")
	t.Setenv("CLIENT_URL", "http://localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 5050 {
		t.Errorf("Server.Port = %d, want 5050 from legacy PORT", cfg.Server.Port)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORSOrigins = %v, want legacy CLIENT_URL origin", cfg.Security.CORSOrigins)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9999
api:
  default_page_size: 20
  max_page_size: 40
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 from config file", cfg.Server.Port)
	}
	if cfg.API.DefaultPageSize != 20 || cfg.API.MaxPageSize != 40 {
		t.Errorf("API paging = %d/%d, want 20/40", cfg.API.DefaultPageSize, cfg.API.MaxPageSize)
	}
}

func TestLoadEnvBeatsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7777")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want env override 7777", cfg.Server.Port)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("HTTP_PORT", "99999")

	if _, err := Load(); err == nil {
		t.Error("Load with out-of-range port succeeded, want error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, true},
		{"empty database path", func(c *Config) { c.Database.Path = "" }, true},
		{"zero default page size", func(c *Config) { c.API.DefaultPageSize = 0 }, true},
		{"max below default page size", func(c *Config) { c.API.MaxPageSize = 5 }, true},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, true},
		{
			"zero rate limit allowed when disabled",
			func(c *Config) {
				c.Security.RateLimitReqs = 0
				c.Security.RateLimitDisabled = true
			},
			false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate succeeded, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate failed: %v", err)
			}
		})
	}
}

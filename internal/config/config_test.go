package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Port != want.Port || cfg.Store.Driver != "memory" || !cfg.Store.SeedDemo || cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
port: "9090"
store:
  driver: sqlite
  dsn: /tmp/market.db
  seed_demo: false
auth:
  mode: signed
  token_ttl: 2h
unsplash:
  timeout: 3s
cors_origins:
  - http://localhost:3000
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.Store.Driver != "sqlite" || cfg.Store.DSN != "/tmp/market.db" || cfg.Store.SeedDemo {
		t.Fatalf("store cfg = %+v", cfg)
	}
	if cfg.Auth.Mode != "signed" || cfg.Auth.TokenTTL != 2*time.Hour || cfg.Unsplash.Timeout != 3*time.Second {
		t.Fatalf("auth/unsplash cfg = %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.Media.MaxUploadBytes != 16<<20 {
		t.Fatalf("unset key lost its default: %d", cfg.Media.MaxUploadBytes)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "port: \"9090\"\nunsplash:\n  access_key: from-file\n")
	t.Setenv("PORT", "7070")
	t.Setenv("UNSPLASH_ACCESS_KEY", "from-env")
	t.Setenv("IMAGEMARKET_CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7070" || cfg.Unsplash.AccessKey != "from-env" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }},
		{"sql without dsn", func(c *Config) { c.Store.Driver = "postgres" }},
		{"unknown auth mode", func(c *Config) { c.Auth.Mode = "oauth" }},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"zero timeout", func(c *Config) { c.Unsplash.Timeout = 0 }},
		{"no media dir", func(c *Config) { c.Media.Dir = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	if _, err := Load(writeFile(t, "port: [unclosed")); err == nil {
		t.Fatal("expected parse error")
	}
}

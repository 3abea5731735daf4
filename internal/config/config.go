package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Port          string         `yaml:"port" env:"PORT"`
	Secret        string         `yaml:"secret" env:"IMAGEMARKET_SECRET"`
	Store         StoreConfig    `yaml:"store"`
	Auth          AuthConfig     `yaml:"auth"`
	Unsplash      UnsplashConfig `yaml:"unsplash"`
	Media         MediaConfig    `yaml:"media"`
	CORSOrigins   []string       `yaml:"cors_origins" env:"IMAGEMARKET_CORS_ORIGINS"`
	StaticDir     string         `yaml:"static_dir" env:"IMAGEMARKET_STATIC_DIR"`
	SecureCookies bool           `yaml:"secure_cookies" env:"IMAGEMARKET_SECURE_COOKIES"`
}

type StoreConfig struct {
	Driver   string `yaml:"driver" env:"IMAGEMARKET_STORE_DRIVER"`
	DSN      string `yaml:"dsn" env:"IMAGEMARKET_STORE_DSN"`
	SeedDemo bool   `yaml:"seed_demo" env:"IMAGEMARKET_SEED_DEMO"`
}

type AuthConfig struct {
	Mode     string        `yaml:"mode" env:"IMAGEMARKET_AUTH_MODE"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"IMAGEMARKET_TOKEN_TTL"`
}

type UnsplashConfig struct {
	AccessKey string        `yaml:"access_key" env:"UNSPLASH_ACCESS_KEY"`
	APIURL    string        `yaml:"api_url" env:"UNSPLASH_API_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"UNSPLASH_TIMEOUT"`
}

type MediaConfig struct {
	Dir            string `yaml:"dir" env:"IMAGEMARKET_MEDIA_DIR"`
	PublicPrefix   string `yaml:"public_prefix" env:"IMAGEMARKET_MEDIA_PREFIX"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" env:"IMAGEMARKET_MAX_UPLOAD_BYTES"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Port: "8080",
		Store: StoreConfig{
			Driver:   "memory",
			SeedDemo: true,
		},
		Auth: AuthConfig{
			Mode:     "mock",
			TokenTTL: 24 * time.Hour,
		},
		Unsplash: UnsplashConfig{
			APIURL:  "https://api.unsplash.com",
			Timeout: 10 * time.Second,
		},
		Media: MediaConfig{
			Dir:            "data/media",
			PublicPrefix:   "/media",
			MaxUploadBytes: 16 << 20,
		},
		CORSOrigins: []string{"*"},
		StaticDir:   "public",
	}
}

// Load reads filename over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: port is required")
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite3", "sqlite", "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("config: store.dsn is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	switch c.Auth.Mode {
	case "mock", "signed":
	default:
		return fmt.Errorf("config: unknown auth.mode %q", c.Auth.Mode)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: auth.token_ttl must be positive")
	}
	if c.Unsplash.Timeout <= 0 {
		return errors.New("config: unsplash.timeout must be positive")
	}
	if c.Media.Dir == "" {
		return errors.New("config: media.dir is required")
	}
	if c.Media.MaxUploadBytes <= 0 {
		return errors.New("config: media.max_upload_bytes must be positive")
	}
	return nil
}

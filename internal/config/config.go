// Package config loads splitweek server configuration from a TOML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type AuthConfig struct {
	Secret string `toml:"secret"`

	// TokenTTL is a Go duration string, e.g. "24h".
	TokenTTL string `toml:"token_ttl"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: "./data/splitweek.db",
		},
		Auth: AuthConfig{
			Secret:   "change-this-secret-in-production",
			TokenTTL: "24h",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads configuration from path, falling back to defaults when the file
// does not exist, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if _, err := cfg.TokenTTL(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TokenTTL parses the configured token lifetime.
func (c *Config) TokenTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil {
		return 0, fmt.Errorf("failed to parse auth.token_ttl %q: %w", c.Auth.TokenTTL, err)
	}
	return d, nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("SPLITWEEK_HOST", c.Server.Host)
	if v := os.Getenv("SPLITWEEK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	c.Auth.Secret = getEnv("JWT_SECRET", c.Auth.Secret)
	c.Auth.TokenTTL = getEnv("JWT_TOKEN_TTL", c.Auth.TokenTTL)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Package config loads service and client settings from an optional YAML
// file with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	CacheFile   = "file"
	CacheSQLite = "sqlite"
)

// Config holds all dashprefs configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Client  ClientConfig  `yaml:"client"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the preference service.
type ServerConfig struct {
	Port            string `yaml:"port"`
	PreferencesFile string `yaml:"preferences_file"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// ClientConfig configures a dashboard session run from the CLI.
type ClientConfig struct {
	RemoteURL    string `yaml:"remote_url"` // empty: offline, local cache only
	Timeout      string `yaml:"timeout"`
	CacheDir     string `yaml:"cache_dir"`
	CacheBackend string `yaml:"cache_backend"` // file, sqlite
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			PreferencesFile: "/data/preferences.json",
			ShutdownTimeout: "10s",
		},
		Client: ClientConfig{
			RemoteURL:    "http://localhost:8080",
			Timeout:      "5s",
			CacheDir:     filepath.Join(xdgDataHome(), "dashprefs"),
			CacheBackend: CacheSQLite,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Port, "PORT")
	set(&c.Server.PreferencesFile, "PREFERENCES_FILE")
	set(&c.Client.RemoteURL, "DASHBOARD_REMOTE_URL")
	set(&c.Client.CacheDir, "DASHBOARD_CACHE_DIR")
	set(&c.Client.CacheBackend, "DASHBOARD_CACHE_BACKEND")
	set(&c.Logging.Level, "LOG_LEVEL")
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Client.Timeout); err != nil {
		return fmt.Errorf("client.timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("server.shutdown_timeout: %w", err)
	}
	switch c.Client.CacheBackend {
	case CacheFile, CacheSQLite:
	default:
		return fmt.Errorf("client.cache_backend: unknown backend %q", c.Client.CacheBackend)
	}
	return nil
}

// RemoteTimeout is Client.Timeout parsed; Validate guarantees it parses.
func (c *Config) RemoteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Client.Timeout)
	return d
}

func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ShutdownTimeout)
	return d
}

// DefaultPath returns the default YAML config path.
func DefaultPath() string {
	return filepath.Join(xdgConfigHome(), "dashprefs", "config.yaml")
}

func xdgConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

func xdgDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

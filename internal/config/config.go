// Package config loads the console configuration from YAML, applying
// defaults for anything the file leaves out.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL     = "https://digimonnaie-backend-1.onrender.com/api"
	DefaultIdleTimeout = 2 * time.Minute
	DefaultAPITimeout  = 30 * time.Second
	DefaultRowsPerPage = 5

	appDirName = "digimonnaie"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	UI      UIConfig      `yaml:"ui"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	StateDir    string        `yaml:"state_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type UIConfig struct {
	RowsPerPage int  `yaml:"rows_per_page"`
	Mouse       bool `yaml:"mouse"`
}

func defaultConfig() *Config {
	dir := DefaultStateDir()
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultAPITimeout,
		},
		Session: SessionConfig{
			IdleTimeout: DefaultIdleTimeout,
			StateDir:    dir,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "console.log"),
		},
		UI: UIConfig{
			RowsPerPage: DefaultRowsPerPage,
			Mouse:       true,
		},
	}
}

// Load reads the config at path. A missing file yields the defaults;
// environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DIGIMONNAIE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("DIGIMONNAIE_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DIGIMONNAIE_IDLE_TIMEOUT: %w", err)
		}
		c.Session.IdleTimeout = d
	}
	return nil
}

// Validate checks the values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url %q must be an absolute http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %v", c.API.Timeout)
	}
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("session.idle_timeout must be positive, got %v", c.Session.IdleTimeout)
	}
	if c.Session.StateDir == "" {
		return errors.New("session.state_dir must not be empty")
	}
	if c.UI.RowsPerPage <= 0 {
		c.UI.RowsPerPage = DefaultRowsPerPage
	}
	return nil
}

// DefaultStateDir returns ~/.local/state/digimonnaie, respecting
// XDG_STATE_HOME if set.
func DefaultStateDir() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "state", appDirName)
}

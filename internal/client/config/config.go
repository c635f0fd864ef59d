// Package config loads the wardrobix client configuration: a YAML file, then
// WARDROBIX_* environment overrides. Command line flags are applied on top by
// the caller before Validate.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no path is given and it exists.
const DefaultFile = "wardrobix.yaml"

// Config is the client configuration.
type Config struct {
	BaseURL  string        `yaml:"baseUrl"`
	CAFile   string        `yaml:"caFile"`
	Timeout  time.Duration `yaml:"timeout"`
	LogLevel string        `yaml:"logLevel"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseURL:  "http://localhost:8080",
		Timeout:  10 * time.Second,
		LogLevel: "warn",
	}
}

// Load reads path (or DefaultFile when path is empty and the file exists) and
// applies environment overrides. It does not validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	switch {
	case path != "":
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	default:
		if _, err := os.Stat(DefaultFile); err == nil {
			if err := hydrateFromFile(cfg, DefaultFile); err != nil {
				return nil, err
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("WARDROBIX_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("WARDROBIX_CA_FILE"); v != "" {
		cfg.CAFile = v
	}
	if v := os.Getenv("WARDROBIX_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WARDROBIX_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("WARDROBIX_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base url is required")
	}
	u, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil {
		return fmt.Errorf("base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base url must be http or https, got %q", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base url %q has no host", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents persisted CLI defaults for cosmosctl. Values act as
// fallbacks behind command-line flags and COSMOS_* environment variables.
type Config struct {
	Endpoint      string `yaml:"endpoint,omitempty"`
	Key           string `yaml:"key,omitempty"`
	Database      string `yaml:"database,omitempty"`
	AllowInsecure bool   `yaml:"allow_insecure,omitempty"`
}

// DefaultPath returns the default config file path, creating the parent directory if necessary.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(base) == "" {
		base = os.Getenv("XDG_CONFIG_HOME")
		if strings.TrimSpace(base) == "" {
			home, homeErr := os.UserHomeDir()
			if homeErr != nil {
				if err != nil {
					return "", err
				}
				return "", homeErr
			}
			base = filepath.Join(home, ".config")
		}
	}
	dir := filepath.Join(base, "cosmosctl")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration from the provided path. If the file is missing, an empty config is returned.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to disk, creating parent directories when required.
// The file is written with 0600 since it may hold an account key.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// MaskedKey returns a masked representation of the account key for display.
func (c *Config) MaskedKey() string {
	if c.Key == "" {
		return ""
	}
	if len(c.Key) <= 6 {
		return strings.Repeat("*", len(c.Key))
	}
	return c.Key[:3] + strings.Repeat("*", len(c.Key)-6) + c.Key[len(c.Key)-3:]
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfig represents ~/.config/jsonsql/config.yaml.
type UserConfig struct {
	OutputDir string `yaml:"output-dir,omitempty"`
	Table     string `yaml:"table,omitempty"`
}

// Set assigns a config key by its YAML name.
func (c *UserConfig) Set(key, value string) error {
	switch key {
	case "output-dir":
		c.OutputDir = value
	case "table":
		c.Table = value
	default:
		return fmt.Errorf("unknown config key %q (valid: output-dir, table)", key)
	}
	return nil
}

// ConfigDir returns the path to ~/.config/jsonsql/.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "jsonsql")
}

// ConfigPath returns the path to ~/.config/jsonsql/config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadUserConfig reads ~/.config/jsonsql/config.yaml.
func LoadUserConfig() (*UserConfig, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// SaveUserConfig writes ~/.config/jsonsql/config.yaml.
func SaveUserConfig(cfg *UserConfig) error {
	if err := os.MkdirAll(ConfigDir(), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(ConfigPath(), data, 0o600)
}

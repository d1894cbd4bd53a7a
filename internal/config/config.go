package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the persistent defaults in ~/.keyrot/config.yaml
type Config struct {
	CredentialsFile string `yaml:"credentials_file,omitempty"`
	EnvFile         string `yaml:"env_file,omitempty"`
	Region          string `yaml:"region,omitempty"`
	AuthProfile     string `yaml:"auth_profile,omitempty"`
	Output          bool   `yaml:"output,omitempty"`
}

// setters maps config keys to their field assignment
var setters = map[string]func(*Config, string) error{
	"credentials_file": func(c *Config, v string) error { c.CredentialsFile = v; return nil },
	"env_file":         func(c *Config, v string) error { c.EnvFile = v; return nil },
	"region":           func(c *Config, v string) error { c.Region = v; return nil },
	"auth_profile":     func(c *Config, v string) error { c.AuthProfile = v; return nil },
	"output": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("output must be true or false: %w", err)
		}
		c.Output = b
		return nil
	},
}

// Keys returns the settable config keys
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetConfigDir returns the config directory path (~/.keyrot)
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".keyrot"
	}
	return filepath.Join(home, ".keyrot")
}

// GetConfigPath returns the config file path (~/.keyrot/config.yaml)
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// LoadConfig loads the configuration from path
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves the configuration to path
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Set updates one key in the config file at path
func Set(path, key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %v)", key, Keys())
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}

	if err := set(cfg, value); err != nil {
		return err
	}
	return SaveConfig(path, cfg)
}

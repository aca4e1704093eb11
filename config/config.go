// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName        = "murmur"
	configFileName = "config.json"
)

// Config represents the application configuration.
type Config struct {
	ModelPath     string `json:"model_path"`
	SampleRate    int    `json:"sample_rate"`
	Device        string `json:"device,omitempty"`
	RecognizerBin string `json:"recognizer_bin,omitempty"`
	Assistant     string `json:"assistant,omitempty"`
	WorkDir       string `json:"work_dir,omitempty"`
	DataDir       string `json:"data_dir,omitempty"`
}

// Load loads configuration from the config file, applying environment
// overrides. Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}
	return c.saveTo(path)
}

func (c *Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnv overlays MURMUR_* environment variables onto the config.
func (c *Config) applyEnv() {
	if v := os.Getenv("MURMUR_MODEL"); v != "" {
		c.ModelPath = v
	}
	if v := os.Getenv("MURMUR_DEVICE"); v != "" {
		c.Device = v
	}
	if v := os.Getenv("MURMUR_ASSISTANT"); v != "" {
		c.Assistant = v
	}
}

// ResolveDataDir returns the directory for the prompt store, creating it.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		dir = filepath.Join(base, appName, "data")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}

func configPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName, configFileName), nil
}

func defaultConfig() *Config {
	return &Config{
		SampleRate:    16000,
		RecognizerBin: "murmur-helper",
		Assistant:     "claude",
	}
}

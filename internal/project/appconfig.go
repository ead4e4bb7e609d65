// Package project persists application configuration, packing presets and
// layout job files.
package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/piwi3910/nanofiche/internal/model"
)

// maxRecentJobs bounds AppConfig.RecentJobs.
const maxRecentJobs = 10

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.nanofiche/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".nanofiche")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.toml")
}

// SaveAppConfig persists an AppConfig to the given path as TOML.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LoadAppConfig reads an AppConfig from the given path. Keys missing from
// the file keep their default values. If the file does not exist, it returns
// DefaultAppConfig with no error.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return model.AppConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if config.RecentJobs == nil {
		config.RecentJobs = []string{}
	}
	return config, nil
}

// RememberJob moves path to the front of the recent jobs list.
func RememberJob(config *model.AppConfig, path string) {
	jobs := []string{path}
	for _, j := range config.RecentJobs {
		if j != path && len(jobs) < maxRecentJobs {
			jobs = append(jobs, j)
		}
	}
	config.RecentJobs = jobs
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"toolmux/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/toolmux"
	configFileName = "config.yaml"
)

// GetDefaultConfigPath returns ~/.config/toolmux/config.yaml.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user home directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

// LoadConfig loads the configuration from the given YAML file.
//
// Environment variable references of the form ${VAR} are expanded before
// unmarshalling, so commands, URLs and headers can carry secrets without
// writing them into the file. A missing file yields the default
// configuration (which validation will then reject for having no servers).
func LoadConfig(path string) (Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config file found at %s, using defaults", path)
			return config, nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", path, err)
	}

	expanded := os.Expand(string(data), func(name string) string {
		return os.Getenv(name)
	})

	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return Config{}, fmt.Errorf("error parsing config from %s: %w", path, err)
	}

	for i := range config.SourceServers {
		applyServerDefaults(&config.SourceServers[i])
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s (%d source servers)",
		path, len(config.SourceServers))
	return config, nil
}

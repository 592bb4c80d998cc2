// Config loading for the lens CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	cfgKeyDataDir       = "data_dir"
	cfgKeyCacheTTL      = "cache_ttl"
	cfgKeyDeleteDisplay = "delete_display"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Lens CLI configuration

# Data directory for session change backups (optional; overridable by --data-dir)
# data_dir:

# Metadata cache expiry (Go duration, default 5m)
# cache_ttl: 5m

# How projected previews present rows with a pending delete:
# "strikethrough" keeps and flags them, "hidden" drops them.
# delete_display: strikethrough
`

// loadConfig reads config.yaml from the resolved config directory using
// Viper. It creates the config directory and a default config.yaml on first
// run; a missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureConfigDir creates the configuration directory if needed.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile writes the commented default config.yaml when no
// config file exists yet.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

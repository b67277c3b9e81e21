// Package config provides configuration loading for ualpha.
// values are resolved through the fallback chain embedded defaults → global config
// (~/.config/ualpha/config) → local config (.ualpha/config in the working directory).
package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed defaults/config
var defaultsFS embed.FS

// DefaultsFS returns the embedded filesystem with default configuration files.
func DefaultsFS() embed.FS { return defaultsFS }

// localDirName is the per-project configuration directory.
const localDirName = ".ualpha"

// ColorConfig holds output colors as "r,g,b" strings.
type ColorConfig struct {
	Category  string
	Joint     string
	Warn      string
	Error     string
	Timestamp string
	Info      string
}

// Config is the fully resolved application configuration.
type Config struct {
	Values
	Colors ColorConfig

	configDir string // global configuration directory
	localDir  string // local configuration directory, empty if not present
}

// Load loads configuration from configDir (or the default location when empty) and from
// the local .ualpha directory of the working directory if it exists.
// the global config file is installed from embedded defaults on first run.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	localDir := ""
	if info, err := os.Stat(localDirName); err == nil && info.IsDir() {
		localDir = localDirName
	}

	return loadWithLocal(configDir, localDir)
}

// loadWithLocal loads configuration from explicit global and local directories.
func loadWithLocal(globalDir, localDir string) (*Config, error) {
	if err := newDefaultsInstaller(defaultsFS).Install(globalDir); err != nil {
		return nil, fmt.Errorf("install defaults: %w", err)
	}

	globalPath := filepath.Join(globalDir, "config")
	localPath := ""
	if localDir != "" {
		localPath = filepath.Join(localDir, "config")
	}

	values, err := newValuesLoader(defaultsFS).Load(localPath, globalPath)
	if err != nil {
		return nil, fmt.Errorf("load values: %w", err)
	}

	colors, err := loadColors(defaultsFS, globalPath, localPath)
	if err != nil {
		return nil, fmt.Errorf("load colors: %w", err)
	}

	return &Config{Values: values, Colors: colors, configDir: globalDir, localDir: localDir}, nil
}

// DefaultConfigDir returns the default global configuration directory.
func DefaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ualpha")
	}
	return filepath.Join(".config", "ualpha")
}

// ConfigDir returns the global configuration directory in use.
func (c *Config) ConfigDir() string { return c.configDir }

// LocalDir returns the local configuration directory, empty if none was found.
func (c *Config) LocalDir() string { return c.localDir }

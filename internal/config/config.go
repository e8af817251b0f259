// Package config loads foodmap configuration.
//
// Sources are layered with later ones overriding earlier ones:
//
//	defaults < YAML file (--config) < FOODMAP_* environment < command-line flags
//
// Environment variables name a section and a key separated by the first
// underscore: FOODMAP_STORE_PATH sets store.path and
// FOODMAP_CATALOG_DEFAULT_HOURS sets catalog.default_hours.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Config is the complete runtime configuration.
type Config struct {
	Store    StoreConfig    `koanf:"store"`
	Settings SettingsConfig `koanf:"settings"`
	Quota    QuotaConfig    `koanf:"quota"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Catalog  CatalogConfig  `koanf:"catalog"`
}

// StoreConfig locates the catalog database.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// SettingsConfig locates the settings file. An empty path means
// "settings.yaml in the database directory".
type SettingsConfig struct {
	Path string `koanf:"path"`
}

// QuotaConfig bounds the space the catalog may use. Zero means the free space
// of the filesystem holding the database.
type QuotaConfig struct {
	Bytes uint64 `koanf:"bytes"`
}

// LogConfig sets the minimum log level: debug, info, warn or error.
type LogConfig struct {
	Level string `koanf:"level"`
}

// MetricsConfig names the Prometheus textfile written after each command.
// Empty disables it.
type MetricsConfig struct {
	File string `koanf:"file"`
}

// CatalogConfig holds defaults applied when adding records.
type CatalogConfig struct {
	DefaultHours string `koanf:"default_hours"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Store:   StoreConfig{Path: "foodmap.db"},
		Log:     LogConfig{Level: "warn"},
		Catalog: CatalogConfig{DefaultHours: "All day"},
	}
}

// SettingsPath returns the settings file path, deriving it from the store
// path when not set explicitly.
func (c Config) SettingsPath() string {
	if c.Settings.Path != "" {
		return c.Settings.Path
	}
	return filepath.Join(filepath.Dir(c.Store.Path), "settings.yaml")
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return slog.LevelWarn, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Validate checks the configuration for values no command can run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// Package config loads runtime configuration for prism from viper.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/viper"

	"github.com/papapumpkin/prism/internal/telemetry"
)

// Storage backends accepted by the backend key.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// File names kept inside the data directory.
const (
	DatabaseFile = "prism.db"
	CatalogFile  = "routes.toml"
)

// ErrUnknownBackend is returned by Load when backend names no known store.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Config holds all runtime configuration for a prism session.
// Values are populated from .prism.yaml, PRISM_* env vars, and CLI flags.
type Config struct {
	DataDir     string `mapstructure:"data_dir"`
	Backend     string `mapstructure:"backend"`
	CatalogFile string `mapstructure:"catalog_file"`
	Slot        string `mapstructure:"slot"`
	Telemetry   bool   `mapstructure:"telemetry"`
	Verbose     bool   `mapstructure:"verbose"`
	NoColor     bool   `mapstructure:"no_color"`
}

// Backends returns the accepted backend names.
func Backends() []string {
	return []string{BackendSQLite, BackendFile, BackendMemory}
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags. An empty
// catalog_file resolves to routes.toml inside the data directory.
func Load() (Config, error) {
	viper.SetDefault("data_dir", ".prism")
	viper.SetDefault("backend", BackendSQLite)
	viper.SetDefault("catalog_file", "")
	viper.SetDefault("slot", "")
	viper.SetDefault("telemetry", true)
	viper.SetDefault("verbose", false)
	viper.SetDefault("no_color", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if !slices.Contains(Backends(), cfg.Backend) {
		return Config{}, fmt.Errorf("config: %w %q (want one of %v)", ErrUnknownBackend, cfg.Backend, Backends())
	}
	if cfg.CatalogFile == "" {
		cfg.CatalogFile = filepath.Join(cfg.DataDir, CatalogFile)
	}
	return cfg, nil
}

// DatabasePath is the SQLite database location.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, DatabaseFile)
}

// TelemetryPath is the JSONL telemetry log location.
func (c Config) TelemetryPath() string {
	return filepath.Join(c.DataDir, telemetry.FileName)
}

// Package config loads genui settings from the environment, optionally
// overlaid with a YAML profile.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultMaxTreeBytes   = 48 * 1024
	defaultMaxLegacyDepth = 12
)

// Config holds process configuration.
type Config struct {
	LogLevel       string          `yaml:"log_level" json:"log_level"`
	MaxTreeBytes   int             `yaml:"max_tree_bytes" json:"max_tree_bytes"`
	MaxLegacyDepth int             `yaml:"max_legacy_depth" json:"max_legacy_depth"`
	CatalogPath    string          `yaml:"catalog" json:"catalog,omitempty"`
	DatabaseURL    string          `yaml:"database_url" json:"-"`
	DataDir        string          `yaml:"data_dir" json:"data_dir"`
	Telemetry      TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

// TelemetryConfig controls OTLP export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	Insecure bool   `yaml:"insecure" json:"insecure"`
}

// Load loads configuration from environment variables.
func Load() *Config {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	dataDir := os.Getenv("GENUI_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4317"
	}

	return &Config{
		LogLevel:       logLevel,
		MaxTreeBytes:   envInt("GENUI_MAX_TREE_BYTES", defaultMaxTreeBytes),
		MaxLegacyDepth: envInt("GENUI_MAX_LEGACY_DEPTH", defaultMaxLegacyDepth),
		CatalogPath:    os.Getenv("GENUI_CATALOG"),
		// Empty selects lite mode (SQLite under DataDir).
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DataDir:     dataDir,
		Telemetry: TelemetryConfig{
			Enabled:  os.Getenv("GENUI_TELEMETRY") == "true",
			Endpoint: endpoint,
			Insecure: os.Getenv("GENUI_TELEMETRY_INSECURE") == "true",
		},
	}
}

func envInt(name string, def int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("ignoring non-integer setting", "name", name, "value", raw)
		return def
	}
	return n
}

// Validate rejects settings the normalizer cannot run with.
func (c *Config) Validate() error {
	if c.MaxTreeBytes <= 0 {
		return fmt.Errorf("max tree bytes must be positive, got %d", c.MaxTreeBytes)
	}
	if c.MaxLegacyDepth <= 0 {
		return fmt.Errorf("max legacy depth must be positive, got %d", c.MaxLegacyDepth)
	}
	if c.DatabaseURL == "" && c.DataDir == "" {
		return fmt.Errorf("lite mode needs a data directory")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level. Unknown values are Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LiteMode reports whether receipts go to the local SQLite database.
func (c *Config) LiteMode() bool { return c.DatabaseURL == "" }

// SQLitePath is the lite mode database file.
func (c *Config) SQLitePath() string { return filepath.Join(c.DataDir, "genui.db") }

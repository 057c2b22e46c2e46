package config_test

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"LOG_LEVEL", "GENUI_MAX_TREE_BYTES", "GENUI_MAX_LEGACY_DEPTH", "GENUI_CATALOG",
		"DATABASE_URL", "GENUI_DATA_DIR", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"GENUI_TELEMETRY", "GENUI_TELEMETRY_INSECURE",
	} {
		t.Setenv(name, "")
	}
}

// TestLoad_Defaults verifies that Load() returns sensible defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := config.Load()

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 49152, cfg.MaxTreeBytes)
	assert.Equal(t, 12, cfg.MaxLegacyDepth)
	assert.Empty(t, cfg.CatalogPath)
	assert.True(t, cfg.LiteMode())
	assert.Equal(t, filepath.Join("data", "genui.db"), cfg.SQLitePath())
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("GENUI_MAX_TREE_BYTES", "1024")
	t.Setenv("GENUI_MAX_LEGACY_DEPTH", "4")
	t.Setenv("GENUI_CATALOG", "/etc/genui/catalog.yaml")
	t.Setenv("DATABASE_URL", "postgres://production:5432/db")
	t.Setenv("GENUI_TELEMETRY", "true")
	t.Setenv("GENUI_TELEMETRY_INSECURE", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	cfg := config.Load()

	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 1024, cfg.MaxTreeBytes)
	assert.Equal(t, 4, cfg.MaxLegacyDepth)
	assert.Equal(t, "/etc/genui/catalog.yaml", cfg.CatalogPath)
	assert.False(t, cfg.LiteMode())
	assert.Equal(t, config.TelemetryConfig{Enabled: true, Endpoint: "collector:4317", Insecure: true}, cfg.Telemetry)
}

func TestLoad_BadIntegerFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENUI_MAX_TREE_BYTES", "lots")
	assert.Equal(t, 49152, config.Load().MaxTreeBytes)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg := config.Load()
	cfg.MaxTreeBytes = 0
	assert.Error(t, cfg.Validate())

	cfg = config.Load()
	cfg.MaxLegacyDepth = -1
	assert.Error(t, cfg.Validate())

	cfg = config.Load()
	cfg.DataDir = ""
	assert.Error(t, cfg.Validate())
}

func TestSlogLevel(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	} {
		assert.Equal(t, want, (&config.Config{LogLevel: level}).SlogLevel(), level)
	}
}

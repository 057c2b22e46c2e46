package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// profile mirrors Config with optional fields so a YAML file only
// overrides what it sets.
type profile struct {
	LogLevel       *string `yaml:"log_level"`
	MaxTreeBytes   *int    `yaml:"max_tree_bytes"`
	MaxLegacyDepth *int    `yaml:"max_legacy_depth"`
	CatalogPath    *string `yaml:"catalog"`
	DatabaseURL    *string `yaml:"database_url"`
	DataDir        *string `yaml:"data_dir"`
	Telemetry      *struct {
		Enabled  *bool   `yaml:"enabled"`
		Endpoint *string `yaml:"endpoint"`
		Insecure *bool   `yaml:"insecure"`
	} `yaml:"telemetry"`
}

// LoadFile overlays the YAML profile at path onto base and validates the
// result. base is not modified; nil means Load().
func LoadFile(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}

	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}

	if base == nil {
		base = Load()
	}
	cfg := *base
	set(&cfg.LogLevel, p.LogLevel)
	set(&cfg.MaxTreeBytes, p.MaxTreeBytes)
	set(&cfg.MaxLegacyDepth, p.MaxLegacyDepth)
	set(&cfg.CatalogPath, p.CatalogPath)
	set(&cfg.DatabaseURL, p.DatabaseURL)
	set(&cfg.DataDir, p.DataDir)
	if t := p.Telemetry; t != nil {
		set(&cfg.Telemetry.Enabled, t.Enabled)
		set(&cfg.Telemetry.Endpoint, t.Endpoint)
		set(&cfg.Telemetry.Insecure, t.Insecure)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

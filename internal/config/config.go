// Package config holds all linenote configuration, read from
// .linenote/config.yaml at the workspace root.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Dir is the side-car directory at the workspace root.
const Dir = ".linenote"

// Config holds all linenote configuration.
type Config struct {
	// Store settings
	Store StoreConfig `yaml:"store"`

	// Rendered document settings
	Render RenderConfig `yaml:"render"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig configures the canonical store.
type StoreConfig struct {
	// Path to the store file, relative to the workspace root.
	Path string `yaml:"path"`

	// TrackColumns enables the column variant of the line-spec grammar.
	TrackColumns bool `yaml:"track_columns"`
}

// RenderConfig configures the editable document.
type RenderConfig struct {
	IncludeExcerpts bool   `yaml:"include_excerpts"`
	GeneralSection  bool   `yaml:"general_section"`
	Preamble        string `yaml:"preamble"`
}

// LoggingConfig configures the category debug logs.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: filepath.Join(Dir, "annotations"),
		},
		Render: RenderConfig{
			IncludeExcerpts: true,
			GeneralSection:  true,
			Preamble:        "Edit annotation bodies below. Keep the headings; they are the anchors.",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, Dir, "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("LINENOTE_STORE"); p != "" {
		c.Store.Path = p
	}
	if v := os.Getenv("LINENOTE_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
		if c.Logging.Level == "" || c.Logging.Level == "info" {
			c.Logging.Level = "debug"
		}
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store path not configured")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	return nil
}

// StorePath resolves the store path against the workspace root. Absolute
// paths (e.g. from LINENOTE_STORE) are used as-is.
func (c *Config) StorePath(workspace string) string {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(workspace, c.Store.Path)
}

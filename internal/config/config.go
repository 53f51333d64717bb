// Package config loads and persists extforge settings from a YAML file,
// with environment variables taking precedence over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all extforge configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Remote generation
	Gemini GeminiConfig `yaml:"gemini"`

	// Output defaults
	Output OutputConfig `yaml:"output"`

	// Generation-run history
	History HistoryConfig `yaml:"history"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GeminiConfig configures the remote generation client.
type GeminiConfig struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	Model           string `yaml:"model"`
	Timeout         string `yaml:"timeout"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

// OutputConfig configures where and how generated extensions land.
type OutputConfig struct {
	Directory        string `yaml:"directory"`
	ExtensionName    string `yaml:"extension_name"`
	ExtensionVersion string `yaml:"extension_version"`
}

// HistoryConfig configures the run-history store.
type HistoryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "extforge",
		Version: "0.2.0",

		Gemini: GeminiConfig{
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
			Model:           "gemini-1.5",
			Timeout:         "30s",
			MaxOutputTokens: 4000,
		},

		Output: OutputConfig{
			Directory:        "generated_extension",
			ExtensionName:    "Generated Extension",
			ExtensionVersion: "1.0",
		},

		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: "data/extforge.db",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".extforge", "config.yaml")
	}
	return filepath.Join(cwd, ".extforge", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file is not an
// error: defaults are returned, so a bare checkout works without setup.
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
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
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
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if url := os.Getenv("GEMINI_API_URL"); url != "" {
		c.Gemini.BaseURL = url
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.Gemini.Model = model
	}

	if dir := os.Getenv("EXTFORGE_OUTPUT_DIR"); dir != "" {
		c.Output.Directory = dir
	}
	if path := os.Getenv("EXTFORGE_HISTORY_DB"); path != "" {
		c.History.DatabasePath = path
	}
}

// GetGeminiTimeout returns the remote call timeout as a duration.
func (c *Config) GetGeminiTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// validLogLevels lists the accepted logging levels.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Output.Directory == "" {
		return fmt.Errorf("output directory not configured")
	}

	validLevel := false
	for _, l := range validLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, validLogLevels)
	}

	return nil
}

// RemoteConfigured reports whether the remote generation client has the
// credentials it needs.
func (c *Config) RemoteConfigured() bool {
	return c.Gemini.APIKey != ""
}

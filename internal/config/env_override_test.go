package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides_Gemini(t *testing.T) {
	t.Run("GEMINI_API_KEY sets the key", func(t *testing.T) {
		clearEnvOverrides(t)
		t.Setenv("GEMINI_API_KEY", "env-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "env-key", cfg.Gemini.APIKey)
		assert.True(t, cfg.RemoteConfigured())
	})

	t.Run("GEMINI_API_KEY wins over file value", func(t *testing.T) {
		clearEnvOverrides(t)
		t.Setenv("GEMINI_API_KEY", "env-key")

		cfg := DefaultConfig()
		cfg.Gemini.APIKey = "file-key"
		cfg.applyEnvOverrides()

		assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	})

	t.Run("GEMINI_API_URL and GEMINI_MODEL override endpoint", func(t *testing.T) {
		clearEnvOverrides(t)
		t.Setenv("GEMINI_API_URL", "http://localhost:9090/v1")
		t.Setenv("GEMINI_MODEL", "gemini-local")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://localhost:9090/v1", cfg.Gemini.BaseURL)
		assert.Equal(t, "gemini-local", cfg.Gemini.Model)
	})

	t.Run("empty variables leave config untouched", func(t *testing.T) {
		clearEnvOverrides(t)

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestEnvOverrides_Paths(t *testing.T) {
	t.Run("EXTFORGE_OUTPUT_DIR overrides output directory", func(t *testing.T) {
		clearEnvOverrides(t)
		t.Setenv("EXTFORGE_OUTPUT_DIR", "/tmp/ext-out")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/ext-out", cfg.Output.Directory)
	})

	t.Run("EXTFORGE_HISTORY_DB overrides database path", func(t *testing.T) {
		clearEnvOverrides(t)
		t.Setenv("EXTFORGE_HISTORY_DB", "/tmp/runs.db")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/runs.db", cfg.History.DatabasePath)
	})
}

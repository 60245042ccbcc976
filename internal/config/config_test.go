package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("MINDVAULT_DATABASE_URL", "postgres://localhost/mindvault")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, ProviderGemini, cfg.AIProvider)
		assert.Equal(t, "development", cfg.Environment)
		assert.False(t, cfg.Debug)
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		t.Setenv("MINDVAULT_DATABASE_URL", "postgres://localhost/mindvault")
		t.Setenv("MINDVAULT_AI_PROVIDER", "anthropic")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown AI provider")
	})
}

func TestHasAI(t *testing.T) {
	cfg := &Config{AIProvider: ProviderGemini}
	assert.False(t, cfg.HasAI())

	cfg.GeminiAPIKey = "key"
	assert.True(t, cfg.HasAI())

	cfg = &Config{AIProvider: ProviderOpenAI, GeminiAPIKey: "key"}
	assert.False(t, cfg.HasAI())

	cfg.OpenAIAPIKey = "key"
	assert.True(t, cfg.HasAI())
}

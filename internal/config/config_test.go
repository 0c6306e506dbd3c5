package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.OllamaBaseURL)
	assert.Equal(t, "gemma3:latest", cfg.Model)
	assert.InDelta(t, 0.1, cfg.Temperature, 1e-9)
	assert.Equal(t, 10, cfg.MaxWorkers)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OLLAMA_MODEL", "llama3:8b")
	t.Setenv("MAX_CONCURRENT_WORKERS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "llama3:8b", cfg.Model)
	assert.Equal(t, 3, cfg.MaxWorkers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"temperature out of range", "TEMPERATURE", "5.0"},
		{"negative temperature", "TEMPERATURE", "-1"},
		{"zero workers", "MAX_CONCURRENT_WORKERS", "0"},
		{"zero timeout", "REQUEST_TIMEOUT_SECONDS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000", cfg.APIBaseURL)
	assert.Empty(t, cfg.WSBaseURL)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, "8000", cfg.RelayPort)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://chat.example.com")
	t.Setenv("WS_BASE_URL", "wss://push.example.com")
	t.Setenv("HISTORY_LIMIT", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://chat.example.com", cfg.APIBaseURL)
	assert.Equal(t, "wss://push.example.com", cfg.WSBaseURL)
	assert.Equal(t, 25, cfg.HistoryLimit)
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "a lot")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.HistoryLimit)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, "model.json", cfg.ModelPath)
	assert.Equal(t, "predictions.db", cfg.DBPath)
	assert.True(t, cfg.HistoryEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.True(t, cfg.WatchModel)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.InDelta(t, 5, cfg.RateLimit, 1e-9)
	assert.Equal(t, 10, cfg.RateBurst)
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"GOPORT":               "9100",
		"HISTORY_ENABLED":      "false",
		"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
		"WATCH_MODEL":          "false",
		"SHUTDOWN_TIMEOUT":     "250ms",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Addr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.WatchModel)
	assert.False(t, cfg.HistoryEnabled)
	assert.Equal(t, 250*time.Millisecond, cfg.ShutdownTimeout)
}

func TestLoadFromRejectsBadValues(t *testing.T) {
	_, err := LoadFrom(map[string]string{"PREDICT_RATE_LIMIT": "fast"})
	assert.Error(t, err)

	_, err = LoadFrom(map[string]string{"PREDICT_RATE_LIMIT": "2", "PREDICT_RATE_BURST": "0"})
	assert.Error(t, err)
}

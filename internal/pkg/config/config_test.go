package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_AI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8091", cfg.Server.Port)
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.AI.Model)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-6)
	assert.Equal(t, int32(8192), cfg.AI.MaxTokens)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.DebounceDelay)
	assert.Equal(t, 2, cfg.Search.MinQueryLength)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoding.BaseURL)
	assert.InDelta(t, 1.0, cfg.Geocoding.RateLimit, 1e-9)
	assert.False(t, cfg.AI.Configured())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AI_MODEL", "gemini-2.5-flash")
	t.Setenv("AI_TEMPERATURE", "0.2")
	t.Setenv("SEARCH_DEBOUNCE", "150ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.InDelta(t, 0.2, cfg.AI.Temperature, 1e-6)
	assert.Equal(t, 150*time.Millisecond, cfg.Search.DebounceDelay)
}

func TestLoadRejectsBadSearchSettings(t *testing.T) {
	t.Setenv("SEARCH_MIN_QUERY_LENGTH", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNegativeRateLimit(t *testing.T) {
	t.Setenv("GEOCODING_RATE_LIMIT", "-1")

	_, err := Load()
	assert.ErrorContains(t, err, "GEOCODING_RATE_LIMIT")
}

func TestAIConfigured(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{name: "empty", key: "", want: false},
		{name: "whitespace", key: "   ", want: false},
		{name: "placeholder", key: PlaceholderAPIKey, want: false},
		{name: "real key", key: "AIza-test", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AIConfig{APIKey: tt.key}.Configured())
		})
	}
}

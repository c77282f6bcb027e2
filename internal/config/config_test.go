package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hazmate/internal/config"
	"hazmate/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("OPENAI_MODEL", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4o", cfg.AI.OpenAI.Model)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Gemini.Model)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.AI.Claude.Model)
	assert.Equal(t, 120*time.Second, cfg.AI.Timeout())
	assert.Equal(t, 4096, cfg.AI.MaxTokens)
	assert.InDelta(t, 0.1, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes())
	assert.False(t, cfg.Archive.Enabled())
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_VendorEnv(t *testing.T) {
	t.Setenv("AI_PROVIDER", " Gemini ")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CLAUDE_BASE_URL", "http://localhost:9999")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.AI.Provider)
	gemini := cfg.AI.For(domain.VendorGemini)
	assert.Equal(t, "g-key", gemini.APIKey)
	assert.Equal(t, "gemini-2.5-pro", gemini.Model)
	assert.Equal(t, "sk-test", cfg.AI.For(domain.VendorOpenAI).APIKey)
	assert.Equal(t, "http://localhost:9999", cfg.AI.For(domain.VendorClaude).BaseURL)
	assert.Equal(t, config.ProviderConfig{}, cfg.AI.For("mystery"))
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("HAZMATE_SERVER_PORT", "")
	t.Setenv("PORT", "5000")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Server.Port)

	t.Setenv("HAZMATE_SERVER_PORT", ":9090")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_ServiceSettings(t *testing.T) {
	t.Setenv("HAZMATE_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("HAZMATE_ARCHIVE_BUCKET", "bol-archive")
	t.Setenv("HAZMATE_ARCHIVE_PREFIX", "/scans/")
	t.Setenv("HAZMATE_UPLOAD_MAX_FILE_SIZE_MB", "4")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Archive.Enabled())
	assert.Equal(t, "scans", cfg.Archive.Prefix)
	assert.Equal(t, int64(4<<20), cfg.Upload.MaxBytes())
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"AI_TIMEOUT_SECS":                 "0",
		"AI_MAX_TOKENS":                   "-1",
		"AI_TEMPERATURE":                  "3.5",
		"HAZMATE_UPLOAD_MAX_FILE_SIZE_MB": "0",
		"HAZMATE_METRICS_PATH":            "metrics",
	}
	for env, val := range tests {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, val)
			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), env)
		})
	}
}

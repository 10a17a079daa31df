package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8501", cfg.HTTP.Addr)
	assert.Equal(t, "vader", cfg.Sentiment.Backend)
	assert.Equal(t, 30*time.Second, cfg.Reddit.FetchTimeout)
	assert.Equal(t, uint32(3), cfg.Reddit.BreakerFailures)
	assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)
	assert.Equal(t, "SentimentResults", cfg.Archive.DynamoDBTable)
}

func TestLoadNestedOverrides(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "abc")
	t.Setenv("REDDIT_FETCH_TIMEOUT", "5s")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.Reddit.ClientID)
	assert.Equal(t, 5*time.Second, cfg.Reddit.FetchTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.AllowedOrigins)
}

func TestLoadRejectsBadBackend(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"SENTIMENT_BACKEND": "magic"}},
		{name: "huggingface without endpoint", env: map[string]string{"SENTIMENT_BACKEND": "huggingface"}},
		{name: "openai without key", env: map[string]string{"SENTIMENT_BACKEND": "openai"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAppEnv(t *testing.T) {
	assert.Equal(t, "dev", AppEnv(func(string) string { return "" }))
	assert.Equal(t, "production", AppEnv(func(string) string { return "production" }))
}

func TestEnvFile(t *testing.T) {
	assert.Equal(t, "config/envs/.env.prod", EnvFile("prod"))

	t.Setenv("ENV_FILE", "/etc/sentiboard.env")
	assert.Equal(t, "/etc/sentiboard.env", EnvFile("prod"))
}

func TestLoadEnvKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.test")
	require.NoError(t, os.WriteFile(path, []byte("SESSION_TTL=45m\nLOG_LEVEL=error\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("LOG_LEVEL", "debug")
	t.Cleanup(func() { os.Unsetenv("SESSION_TTL") })

	LoadEnv("test")

	assert.Equal(t, "45m", os.Getenv("SESSION_TTL"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MINIO_ACCESS_KEY_ID", "minio")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "minio-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.API.Port)
	assert.Equal(t, []string{"*"}, cfg.API.AllowedOrigins)
	assert.Equal(t, "gemma3n", cfg.Oracle.OllamaModel)
	assert.Equal(t, "rod", cfg.Render.Engine)
	assert.Equal(t, time.Hour, cfg.Staging.TTL)
	assert.Equal(t, 6, cfg.Chat.Window)
	assert.Equal(t, "1", cfg.Chat.SessionID)
	assert.Empty(t, cfg.Oracle.GeminiAPIKey)
	assert.Equal(t, 10, cfg.API.LoginRateLimitPerHour)
	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.Equal(t, 9091, cfg.Worker.MetricsPort)
	assert.Equal(t, "@every 15m", cfg.Staging.SweepSpec)
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("API_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("STAGING_TTL", "30m")
	t.Setenv("RENDER_ENGINE", "chromedp")
	t.Setenv("LOGIN_RATE_LIMIT_PER_HOUR", "0")
	t.Setenv("WORKER_CONCURRENCY", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.API.AllowedOrigins)
	assert.Equal(t, "key-123", cfg.Oracle.GeminiAPIKey)
	assert.Equal(t, 30*time.Minute, cfg.Staging.TTL)
	assert.Equal(t, "chromedp", cfg.Render.Engine)
	assert.Equal(t, 0, cfg.API.LoginRateLimitPerHour)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RENDER_ENGINE", "weasyprint")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render engine")
}

func TestLoadRequiresMinIOCredentials(t *testing.T) {
	t.Setenv("MINIO_ACCESS_KEY_ID", "")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "n", User: "u", Password: "p", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.fetan.test/api/")
	t.Setenv("ENV", "development")
	for _, key := range []string{"PORT", "API_TIMEOUT", "SESSION_BACKEND", "SESSION_TTL", "SESSION_SECURE_COOKIE", "DB_HOST", "S3_BUCKET", "ACTIVITY_RETENTION"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.fetan.test/api", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Session.SecureCookie)
	assert.False(t, cfg.DB.Enabled())
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, 90*24*time.Hour, cfg.Activity.Retention)
}

func TestLoad_MissingBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_BASE_URL")
}

func TestLoad_RelativeBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "/api")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidSessionBackend(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.fetan.test")
	t.Setenv("SESSION_BACKEND", "cookie")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_BACKEND")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.fetan.test")
	t.Setenv("SESSION_TTL", "tomorrow")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_TTL")
}

func TestLoad_IncompleteDatabase(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.fetan.test")
	t.Setenv("DB_HOST", "postgres")
	t.Setenv("DB_USER", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database configuration incomplete")
}

func TestLoad_ProductionSecureCookie(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.fetan.test")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_BACKEND", "MEMORY")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Session.SecureCookie)
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
}

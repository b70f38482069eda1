package config

import (
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "CSRF_KEY", "SESSION_KEY", "CACHE_TTL", "BASE_URL", "LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := LoadConfig(noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "8585", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "./dreamcrest.db", cfg.DatabaseURL)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Len(t, cfg.CSRFKey, 32)
	assert.Len(t, cfg.SessionKey, 32)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/dreamcrest")
	t.Setenv("CSRF_KEY", key)
	t.Setenv("SESSION_KEY", "too-short")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("BASE_URL", "https://dreamcrest.in/")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, []byte("0123456789abcdef0123456789abcdef"), cfg.CSRFKey)
	assert.Len(t, cfg.SessionKey, 32)
	assert.NotEqual(t, []byte("too-short"), cfg.SessionKey)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "https://dreamcrest.in", cfg.BaseURL)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadConfigReadsEnvFile(t *testing.T) {
	os.Unsetenv("WHATSAPP_NUMBER")
	t.Cleanup(func() { os.Unsetenv("WHATSAPP_NUMBER") })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WHATSAPP_NUMBER=919876543210\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "919876543210", cfg.WhatsAppNumber)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := LoadConfig(noEnvFile(t))
	assert.Error(t, err)
}

func TestLoadConfigFixesBadPort(t *testing.T) {
	t.Setenv("PORT", "http")
	t.Setenv("DB_DRIVER", "sqlite")
	cfg, err := LoadConfig(noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "8585", cfg.Port)
}

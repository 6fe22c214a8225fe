package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "Secret")
	t.Setenv("SESSION_SECRET", "signing-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{
		"SERVER_PORT", "RATE_LIMIT_PER_MINUTE", "LOG_LEVEL", "STORE_DRIVER", "DATA_PATH",
		"SESSION_TTL", "MAX_UPLOAD_MB", "BLOB_REF_TTL", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "bolt", cfg.Store.Driver)
	assert.Equal(t, "data/axviral.db", cfg.Store.Path)
	assert.Equal(t, "Secret", cfg.Admin.Password)
	assert.Equal(t, 12*time.Hour, cfg.Admin.SessionTTL)
	assert.Equal(t, 512, cfg.Media.MaxUploadMB)
	assert.Equal(t, int64(512<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 30*time.Minute, cfg.Media.BlobRefTTL)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("MAX_UPLOAD_MB", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Admin.SessionTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing admin password", "ADMIN_PASSWORD", ""},
		{"missing session secret", "SESSION_SECRET", ""},
		{"unknown driver", "STORE_DRIVER", "postgres"},
		{"bad port", "SERVER_PORT", "eighty"},
		{"bad ttl", "SESSION_TTL", "forever"},
		{"zero upload limit", "MAX_UPLOAD_MB", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("EMAIL_USER", "mailer@example.com")
	t.Setenv("EMAIL_FROM", "")
	t.Setenv("AVATAR_STORAGE", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("RESET_TTL", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.AppPort)
	assert.Equal(t, ":8000", cfg.Address())
	assert.Equal(t, 365*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.ResetTTL)
	assert.Equal(t, "mailer@example.com", cfg.Mail.From)
	assert.True(t, cfg.Mail.Enabled())
	assert.Equal(t, "smtp.gmail.com:587", cfg.Mail.Addr())
	assert.Equal(t, StorageLocal, cfg.Avatar.Storage)
	assert.EqualValues(t, 5<<20, cfg.Avatar.MaxBytes)
}

func TestFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("RESET_TTL", "15m")
	t.Setenv("FRONTEND_URL", "https://app.example.com/")
	t.Setenv("AVATAR_STORAGE", "S3")
	t.Setenv("S3_BUCKET", "avatars")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, 15*time.Minute, cfg.ResetTTL)
	assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
	assert.Equal(t, "http://localhost:9090", cfg.PublicURL)
	assert.Equal(t, StorageS3, cfg.Avatar.Storage)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	t.Run("duration", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "forever")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "SESSION_TTL")
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		t.Setenv("AVATAR_STORAGE", "s3")
		t.Setenv("S3_BUCKET", "")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "S3_BUCKET")
	})

	t.Run("unknown storage", func(t *testing.T) {
		t.Setenv("AVATAR_STORAGE", "ftp")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "AVATAR_STORAGE")
	})
}

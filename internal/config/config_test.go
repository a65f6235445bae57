package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "redis", cfg.Notification.Driver)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 5*time.Second, cfg.Notification.RetryBase())
	assert.Equal(t, 5*time.Minute, cfg.Notification.RetryMax())
	assert.Empty(t, cfg.Redis.KeyPrefix)
}

func TestLoadRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "AUTH_JWT_SECRET")
}

func TestLoadRejectsUnknownDrivers(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")

	t.Setenv("NOTIFY_DRIVER", "carrier-pigeon")
	_, err := Load()
	assert.ErrorContains(t, err, "NOTIFY_DRIVER")

	t.Setenv("NOTIFY_DRIVER", "rabbitmq")
	t.Setenv("STORAGE_DRIVER", "floppy")
	_, err = Load()
	assert.ErrorContains(t, err, "STORAGE_DRIVER")

	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("LOG_FORMAT", "xml")
	_, err = Load()
	assert.ErrorContains(t, err, "LOG_FORMAT")
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "true")
	t.Setenv("X_FLOAT", "2.5")

	assert.Equal(t, 7, getEnvAsInt("X_INT", 7))
	assert.True(t, getEnvAsBool("X_BOOL", false))
	assert.Equal(t, 2.5, getEnvAsFloat("X_FLOAT", 1))
	assert.Equal(t, "fallback", getEnv("X_MISSING", "fallback"))
}

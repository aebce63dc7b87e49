package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "tents")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "tent_booking")
	t.Setenv("JWT_SECRET", "s3cret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60, cfg.AccessTTLMin)
	assert.Equal(t, 7, cfg.RefreshTTLDays)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.False(t, cfg.AllowAdminSignup)
	assert.True(t, cfg.StrictTransitions)
	assert.Equal(t, "booking.confirmed", cfg.AMQP.Queue)
	assert.True(t, cfg.Cache.Methods["GET"])
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_NAME")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_TIMEZONE", "Africa/Nairobi")
	t.Setenv("BOOKING_STRICT_TRANSITIONS", "false")
	t.Setenv("ALLOW_ADMIN_SIGNUP", "true")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Nairobi", cfg.Location.String())
	assert.False(t, cfg.StrictTransitions)
	assert.True(t, cfg.AllowAdminSignup)
	assert.Equal(t, 15, cfg.AccessTTLMin)
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestRateLimitNormalization(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)

	t.Setenv("RATE_LIMIT_BURST", "20")
	assert.Equal(t, 20, LoadRateLimitConfig().Capacity)
}

func TestLoadCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "1m")

	cfg := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, time.Minute, cfg.TTL)
}

func TestLoadAMQPFallsBackToAMQPURL(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")

	assert.Equal(t, "amqp://u:p@broker:5672/", LoadAMQPConfig().URL)
}

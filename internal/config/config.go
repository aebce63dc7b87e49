// Package config loads application configuration from the environment.
// An optional .env file in the working directory is read first; real
// environment variables always win over it.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // APP_TIMEZONE must resolve in minimal containers

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values.
type Config struct {
	Env            string // application environment (dev, test, prod)
	Port           string // HTTP port to listen on
	DBUser         string
	DBPass         string // may be empty
	DBHost         string
	DBPort         string
	DBName         string
	JWTSecret      string // HS256 signing secret for access tokens
	AccessTTLMin   int    // access token lifetime in minutes
	RefreshTTLDays int    // refresh token lifetime in days
	BcryptCost     int

	// Location defines "today" for the no-past-dates rule.
	Location *time.Location
	// AllowAdminSignup lets public registration honour role=admin.
	AllowAdminSignup bool
	// StrictTransitions rejects status changes outside the booking lifecycle.
	StrictTransitions bool

	Log       LogConfig
	Metrics   MetricsConfig
	AMQP      AMQPConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

var required = []string{"DB_USER", "DB_HOST", "DB_PORT", "DB_NAME", "JWT_SECRET"}

// Load reads configuration values and returns a Config.  Missing required
// variables and unparsable values are reported as errors.
func Load() (Config, error) {
	_ = godotenv.Load() // .env is optional

	v := newEnv()
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ACCESS_TOKEN_TTL_MIN", 60)
	v.SetDefault("REFRESH_TOKEN_TTL_DAYS", 7)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("ALLOW_ADMIN_SIGNUP", false)
	v.SetDefault("BOOKING_STRICT_TRANSITIONS", true)

	var missing []string
	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	loc, err := time.LoadLocation(v.GetString("APP_TIMEZONE"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	cfg := Config{
		Env:               v.GetString("APP_ENV"),
		Port:              v.GetString("APP_PORT"),
		DBUser:            v.GetString("DB_USER"),
		DBPass:            v.GetString("DB_PASS"),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBName:            v.GetString("DB_NAME"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		AccessTTLMin:      v.GetInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:    v.GetInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:        v.GetInt("BCRYPT_COST"),
		Location:          loc,
		AllowAdminSignup:  v.GetBool("ALLOW_ADMIN_SIGNUP"),
		StrictTransitions: v.GetBool("BOOKING_STRICT_TRANSITIONS"),
		Log:               LoadLogConfig(),
		Metrics:           LoadMetricsConfig(),
		AMQP:              LoadAMQPConfig(),
		Cache:             LoadCacheConfig(),
		RateLimit:         LoadRateLimitConfig(),
	}
	if cfg.AccessTTLMin < 1 || cfg.RefreshTTLDays < 1 {
		return Config{}, fmt.Errorf("token lifetimes must be positive")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return Config{}, fmt.Errorf("BCRYPT_COST out of range: %d", cfg.BcryptCost)
	}
	return cfg, nil
}

// newEnv returns a viper instance that resolves keys from environment
// variables of the same name.
func newEnv() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	return v
}

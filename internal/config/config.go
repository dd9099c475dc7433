package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"lambda-http-adapter/internal/adapters/storage"
	"lambda-http-adapter/internal/retry"
)

// Config holds all configuration for the adapter
type Config struct {
	Environment string `validate:"required,oneof=development staging production test"`
	Port        string `validate:"required,numeric"`
	LogLevel    string `validate:"required,oneof=trace debug info warn warning error fatal panic"`
	LogFormat   string `validate:"required,oneof=text json"`

	// Origin overrides the scheme and host of normalized request URLs.
	Origin       string `validate:"omitempty,url"`
	CacheControl string

	Upstream  UpstreamConfig
	Storage   storage.Config
	Edge      EdgeConfig
	RateLimit RateLimitConfig
	Retry     retry.Config
}

// UpstreamConfig holds the configuration of the proxied application server
type UpstreamConfig struct {
	URL           string `validate:"required,url"`
	ReadinessPath string `validate:"omitempty,startswith=/"`
	NotFoundAsNil bool
	Timeout       time.Duration `validate:"gte=0"`
}

// EdgeConfig holds origin router configuration
type EdgeConfig struct {
	StaticHostHeader string `validate:"required"`
	StaticDomain     string `validate:"omitempty,hostname_rfc1123"`
}

// RateLimitConfig holds the local emulator rate limit
type RateLimitConfig struct {
	RequestsPerSecond float64 `validate:"gte=0"`
	Burst             int     `validate:"gte=0"`
}

// Load loads configuration from environment variables and a .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8081")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("UPSTREAM_URL", "http://localhost:3000")
	v.SetDefault("UPSTREAM_TIMEOUT", "30s")
	v.SetDefault("STORAGE_TYPE", "local")
	v.SetDefault("STATIC_DIR", "./build/static")
	v.SetDefault("STATIC_HOST_HEADER", "s3-host")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	defaults := retry.DefaultConfig()
	v.SetDefault("RETRY_MAX_ATTEMPTS", defaults.MaxAttempts)
	v.SetDefault("RETRY_INITIAL_DELAY", defaults.InitialDelay.String())
	v.SetDefault("RETRY_MAX_DELAY", defaults.MaxDelay.String())
	v.SetDefault("RETRY_BACKOFF_FACTOR", defaults.BackoffFactor)
	v.SetDefault("RETRY_JITTER", defaults.JitterEnabled)

	config := &Config{
		Environment:  v.GetString("ENVIRONMENT"),
		Port:         v.GetString("PORT"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		LogFormat:    v.GetString("LOG_FORMAT"),
		Origin:       v.GetString("ORIGIN"),
		CacheControl: v.GetString("CACHE_CONTROL"),
		Upstream: UpstreamConfig{
			URL:           v.GetString("UPSTREAM_URL"),
			ReadinessPath: v.GetString("UPSTREAM_READINESS_PATH"),
			NotFoundAsNil: v.GetBool("UPSTREAM_NOT_FOUND_AS_NO_ROUTE"),
			Timeout:       v.GetDuration("UPSTREAM_TIMEOUT"),
		},
		Storage: storage.Config{
			Type:     v.GetString("STORAGE_TYPE"),
			BasePath: v.GetString("STATIC_DIR"),
		},
		Edge: EdgeConfig{
			StaticHostHeader: v.GetString("STATIC_HOST_HEADER"),
			StaticDomain:     v.GetString("STATIC_DOMAIN"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
		Retry: retry.Config{
			MaxAttempts:   v.GetInt("RETRY_MAX_ATTEMPTS"),
			InitialDelay:  v.GetDuration("RETRY_INITIAL_DELAY"),
			MaxDelay:      v.GetDuration("RETRY_MAX_DELAY"),
			BackoffFactor: v.GetFloat64("RETRY_BACKOFF_FACTOR"),
			JitterEnabled: v.GetBool("RETRY_JITTER"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("invalid configuration: RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

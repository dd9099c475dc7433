// Package retry runs operations with exponential backoff.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Config configures retry behavior
type Config struct {
	MaxAttempts   int           `mapstructure:"max_attempts"`
	InitialDelay  time.Duration `mapstructure:"initial_delay"`
	MaxDelay      time.Duration `mapstructure:"max_delay"`
	BackoffFactor float64       `mapstructure:"backoff_factor"`
	JitterEnabled bool          `mapstructure:"jitter_enabled"`
}

// DefaultConfig returns a sensible default retry configuration
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// Operation is an operation that can be retried
type Operation func(ctx context.Context) error

// Do runs op until it succeeds, returns an error retryable rejects, or the
// attempts are used up. A nil retryable retries every error.
func Do(ctx context.Context, config *Config, op Operation, retryable func(error) bool) error {
	if config == nil {
		config = DefaultConfig()
	}

	var lastErr error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= config.MaxAttempts || (retryable != nil && !retryable(err)) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(config.Delay(attempt)):
		}
	}

	return lastErr
}

// Delay returns the wait before the attempt following attempt
func (c *Config) Delay(attempt int) time.Duration {
	// initial_delay * backoff_factor^(attempt-1)
	delay := float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt-1))

	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}

	if c.JitterEnabled {
		delay += rand.Float64() * 0.1 * delay
	}

	return time.Duration(delay)
}

package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func TestDo(t *testing.T) {
	config := &Config{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		attempts := 0
		err := Do(context.Background(), config, func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errTransient
			}
			return nil
		}, nil)
		if err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", attempts)
		}
	})

	t.Run("GivesUp", func(t *testing.T) {
		attempts := 0
		err := Do(context.Background(), config, func(ctx context.Context) error {
			attempts++
			return errTransient
		}, nil)
		if !errors.Is(err, errTransient) {
			t.Errorf("expected the last error, got %v", err)
		}
		if attempts != config.MaxAttempts {
			t.Errorf("expected %d attempts, got %d", config.MaxAttempts, attempts)
		}
	})

	t.Run("StopsOnPermanentError", func(t *testing.T) {
		permanent := errors.New("permanent")
		attempts := 0
		err := Do(context.Background(), config, func(ctx context.Context) error {
			attempts++
			return permanent
		}, func(err error) bool { return errors.Is(err, errTransient) })
		if !errors.Is(err, permanent) || attempts != 1 {
			t.Errorf("expected one attempt and the permanent error, got %d attempts, %v", attempts, err)
		}
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Do(ctx, config, func(ctx context.Context) error {
			t.Error("operation should not run")
			return nil
		}, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestDelay(t *testing.T) {
	config := &Config{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond, time.Second}
	for i, w := range want {
		if got := config.Delay(i + 1); got != w {
			t.Errorf("attempt %d: got %v, want %v", i+1, got, w)
		}
	}

	config.JitterEnabled = true
	if got := config.Delay(1); got < 100*time.Millisecond || got > 110*time.Millisecond {
		t.Errorf("jittered delay out of range: %v", got)
	}
}

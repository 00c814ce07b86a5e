package retry

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"medcms/apperrors"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0.0-1.0
}

// DefaultConfig: 3 retries, 100ms initial delay doubling up to 2s, 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// Do runs fn until it succeeds or retries are exhausted, returning the last error.
func Do(ctx context.Context, cfg *Config, fn func() error) error {
	return do(ctx, cfg, fn, func(error) bool { return true })
}

// DoIfRetryable is Do, but returns immediately on errors IsRetryable rejects.
func DoIfRetryable(ctx context.Context, cfg *Config, fn func() error) error {
	return do(ctx, cfg, fn, IsRetryable)
}

func do(ctx context.Context, cfg *Config, fn func() error, shouldRetry func(error) bool) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return err
		}

		if attempt < cfg.MaxRetries {
			select {
			case <-time.After(applyJitter(delay, cfg.JitterFactor)):
				delay = time.Duration(float64(delay) * cfg.Multiplier)
				if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
					delay = cfg.MaxDelay
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}

// IsRetryable reports whether err is transient: a conflict lost to a
// concurrent writer or a connection-level failure. Other conflicts repeat
// on every attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrTransientConflict) {
		return true
	}
	if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidInput) {
		return false
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"deadlock",
		"could not serialize access",
		"database is locked",
		"i/o timeout",
		"too many connections",
	} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

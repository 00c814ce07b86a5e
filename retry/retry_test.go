package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"medcms/apperrors"
)

func fastConfig() *Config {
	return &Config{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ReturnsLastError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return errors.New("still failing")
	})
	assert.EqualError(t, err, "still failing")
	assert.Equal(t, 4, calls)
}

func TestDoIfRetryable_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		calls++
		return apperrors.NotFound("article", nil)
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestDoIfRetryable_RetriesConflict(t *testing.T) {
	calls := 0
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		calls++
		if calls == 1 {
			return apperrors.TransientConflict("article version", "version number taken")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoIfRetryable_StopsOnPermanentConflict(t *testing.T) {
	calls := 0
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		calls++
		return apperrors.Conflict("article category", "category listed more than once")
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, 1, calls)
}

func TestDo_RespectsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := fastConfig()
	cfg.InitialDelay = time.Second
	err := Do(ctx, cfg, func() error { return errors.New("boom") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(errors.New("dial tcp: connection refused")))
	assert.True(t, IsRetryable(apperrors.TransientConflict("article version", "taken")))
	assert.True(t, IsRetryable(fmt.Errorf("update: %w", apperrors.TransientConflict("article version", "taken"))))
	assert.False(t, IsRetryable(apperrors.Conflict("article category", "listed more than once")))
	assert.False(t, IsRetryable(errors.New("syntax error at or near")))
}

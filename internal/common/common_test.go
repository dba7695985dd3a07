package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-dashboard/internal/service"
)

func TestUserError(t *testing.T) {
	err := NewValidationError("Date is required")

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Date is required", UserMessage(err))
	assert.Equal(t, "Date is required: validation failed", err.Error())

	plain := errors.New("disk full")
	assert.Equal(t, "disk full", UserMessage(plain))

	bare := NewUserError("just a message", nil)
	assert.Equal(t, "just a message", bare.Error())
}

func TestRetryErrors(t *testing.T) {
	cause := errors.New("bad request")
	assert.True(t, IsPermanent(Permanent(cause)))
	assert.True(t, IsPermanent(fmt.Errorf("wrapped: %w", Permanent(cause))))
	assert.False(t, IsPermanent(cause))
	assert.ErrorIs(t, Permanent(cause), cause)

	limited := RateLimited(errors.New("status 429"), 2*time.Second)
	assert.ErrorIs(t, limited, ErrRateLimit)
	assert.Equal(t, "status 429 (retry after 2s)", limited.Error())
}

func TestBackoffWait(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want time.Duration
	}{
		{name: "plain error uses current delay", err: errors.New("x"), want: time.Second},
		{name: "retry-after hint", err: RateLimited(errors.New("x"), 3*time.Second), want: 3 * time.Second},
		{name: "hint shorter than delay", err: RateLimited(errors.New("x"), time.Millisecond), want: time.Second},
		{name: "hint capped", err: RateLimited(errors.New("x"), time.Hour), want: 10 * time.Second},
		{name: "bare rate limit waits max", err: fmt.Errorf("%w: status 429", ErrRateLimit), want: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, backoffWait(tt.err, time.Second, 10*time.Second))
		})
	}
}

func TestWithRetry(t *testing.T) {
	opts := service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("succeeds after failures", func(t *testing.T) {
		attempts := 0
		err := WithRetry(context.Background(), func() error {
			attempts++
			if attempts < 2 {
				return errors.New("flaky")
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 2, attempts)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		attempts := 0
		sentinel := errors.New("bad request")
		err := WithRetry(context.Background(), func() error {
			attempts++
			return Permanent(sentinel)
		}, opts)
		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 1, attempts)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		attempts := 0
		err := WithRetry(context.Background(), func() error {
			attempts++
			return errors.New("down")
		}, opts)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.ErrorContains(t, err, "down")
		assert.Equal(t, 3, attempts)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		slow := service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Hour, MaxDelay: time.Hour}
		err := WithRetry(ctx, func() error { return errors.New("down") }, slow)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	_, err = ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	ComponentLogger(logger, "importer").Info("Imported", "count", 3)
	assert.Contains(t, buf.String(), `"component":"importer"`)
	assert.Contains(t, buf.String(), `"count":3`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

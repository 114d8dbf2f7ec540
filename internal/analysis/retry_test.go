package analysis

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/require"
)

func TestNewRetryHandlerDefaults(t *testing.T) {
	h := NewRetryHandler(RetryConfig{MaxRetries: -1, Multiplier: 0.5})
	require.Equal(t, 0, h.cfg.MaxRetries)
	require.Equal(t, defaultInitialBackoff, h.cfg.InitialBackoff)
	require.Equal(t, defaultMaxBackoff, h.cfg.MaxBackoff)
	require.Equal(t, defaultBackoffFactor, h.cfg.Multiplier)
}

func TestRetryHandlerDo(t *testing.T) {
	fast := RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}

	t.Run("success on first try", func(t *testing.T) {
		calls := 0
		err := NewRetryHandler(fast).Do(context.Background(), func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 1, calls)
	})

	t.Run("retries retryable status", func(t *testing.T) {
		calls := 0
		err := NewRetryHandler(fast).Do(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &openai.Error{StatusCode: http.StatusBadGateway}
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := NewRetryHandler(fast).Do(context.Background(), func() error {
			calls++
			return &openai.Error{StatusCode: http.StatusTooManyRequests}
		})
		require.Error(t, err)
		require.Equal(t, 4, calls)
	})

	t.Run("does not retry plain errors", func(t *testing.T) {
		calls := 0
		err := NewRetryHandler(fast).Do(context.Background(), func() error {
			calls++
			return errors.New("bad request")
		})
		require.Error(t, err)
		require.Equal(t, 1, calls)
	})

	t.Run("stops when context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		slow := RetryConfig{MaxRetries: 5, InitialBackoff: time.Minute}
		calls := 0
		err := NewRetryHandler(slow).Do(ctx, func() error {
			calls++
			cancel()
			return &openai.Error{StatusCode: http.StatusServiceUnavailable}
		})
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 1, calls)
	})
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"429", &openai.Error{StatusCode: http.StatusTooManyRequests}, true},
		{"500", &openai.Error{StatusCode: http.StatusInternalServerError}, true},
		{"504", &openai.Error{StatusCode: http.StatusGatewayTimeout}, true},
		{"400", &openai.Error{StatusCode: http.StatusBadRequest}, false},
		{"401", &openai.Error{StatusCode: http.StatusUnauthorized}, false},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, retryable(tt.err))
		})
	}
}

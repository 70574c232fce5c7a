package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/a2ui"
)

type mockTimeoutError struct{ msg string }

func (e *mockTimeoutError) Error() string   { return e.msg }
func (e *mockTimeoutError) Timeout() bool   { return true }
func (e *mockTimeoutError) Temporary() bool { return true }

var _ net.Error = (*mockTimeoutError)(nil)

type mockStatusError struct{ code int }

func (e *mockStatusError) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e *mockStatusError) StatusCode() int { return e.code }

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.InitialDelay)
	assert.Equal(t, 5*time.Second, cfg.MaxDelay)
	assert.Equal(t, 1, Disabled().MaxAttempts)
}

func TestConfigDelay(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2.0}

	assert.Equal(t, 100*time.Millisecond, cfg.Delay(0))
	assert.Equal(t, 200*time.Millisecond, cfg.Delay(1))
	assert.Equal(t, 400*time.Millisecond, cfg.Delay(2))
	assert.Equal(t, time.Second, cfg.Delay(10))
	assert.Equal(t, 100*time.Millisecond, cfg.Delay(-3))
}

func TestConfigDelayWithJitter(t *testing.T) {
	cfg := Config{InitialDelay: time.Second, MaxDelay: time.Minute, Multiplier: 2.0, Jitter: 0.1}
	for i := 0; i < 50; i++ {
		d := cfg.Delay(0)
		assert.GreaterOrEqual(t, d, 900*time.Millisecond)
		assert.LessOrEqual(t, d, 1100*time.Millisecond)
	}
}

func TestDo(t *testing.T) {
	t.Run("success on first attempt", func(t *testing.T) {
		calls := 0
		got, err := Do(context.Background(), fastConfig(3), func(context.Context) (string, error) {
			calls++
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient errors", func(t *testing.T) {
		calls := 0
		var retried []int
		cfg := fastConfig(3)
		cfg.OnRetry = func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) }

		got, err := Do(context.Background(), cfg, func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, &mockTimeoutError{msg: "timeout"}
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, []int{1, 2}, retried)
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		calls := 0
		perm := errors.New("bad request")
		_, err := Do(context.Background(), fastConfig(5), func(context.Context) (int, error) {
			calls++
			return 0, perm
		})
		assert.Equal(t, perm, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), fastConfig(3), func(context.Context) (int, error) {
			calls++
			return 0, a2ui.NewTransientError("overloaded", 503, nil)
		})
		assert.True(t, a2ui.IsTransient(err))
		assert.Equal(t, 3, calls)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		calls := 0
		_, _ = Do(context.Background(), Config{}, func(context.Context) (int, error) {
			calls++
			return 0, nil
		})
		assert.Equal(t, 1, calls)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		cfg := Config{MaxAttempts: 10, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 1}
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		calls := 0
		_, err := Do(ctx, cfg, func(context.Context) (int, error) {
			calls++
			return 0, &mockTimeoutError{msg: "timeout"}
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestEffectiveDelay(t *testing.T) {
	withRetry := a2ui.NewTransientErrorWithRetry("slow down", 429, 2*time.Second, nil)
	assert.Equal(t, 2*time.Second, effectiveDelay(time.Second, withRetry))
	assert.Equal(t, 3*time.Second, effectiveDelay(3*time.Second, withRetry))
	assert.Equal(t, time.Second, effectiveDelay(time.Second, errors.New("x")))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &mockStatusError{code: 429}, true},
		{"server error", &mockStatusError{code: 503}, true},
		{"not found", &mockStatusError{code: 404}, false},
		{"wrapped status", fmt.Errorf("call: %w", &mockStatusError{code: 502}), true},
		{"timeout", &mockTimeoutError{msg: "i/o"}, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"message pattern", errors.New("upstream: Service Unavailable"), true},
		{"plain", errors.New("invalid params"), false},
		{"categorized transient", a2ui.NewTransientError("busy", 0, nil), true},
		{"categorized permanent overrides status", a2ui.NewPermanentError("no", 429, nil), false},
		{"configuration", a2ui.NewConfigurationError("", a2ui.ErrEmptySchema), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
	assert.True(t, IsTransientStatus(500))
	assert.False(t, IsTransientStatus(400))
}

func TestClassify(t *testing.T) {
	cause := errors.New("boom")

	err := Classify("rate limited", 429, 3*time.Second, cause)
	assert.True(t, a2ui.IsTransient(err))
	assert.Equal(t, 3*time.Second, a2ui.RetryAfterOf(err))
	assert.ErrorIs(t, err, cause)

	assert.True(t, a2ui.IsTransient(Classify("down", 503, 0, cause)))
	assert.True(t, a2ui.IsPermanent(Classify("bad key", 401, 0, cause)))
	assert.True(t, a2ui.IsPermanent(Classify("bad request", 400, 5*time.Second, cause)))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), ParseRetryAfter(""))
	assert.Equal(t, 5*time.Second, ParseRetryAfter("5"))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("soon"))
	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	assert.Greater(t, ParseRetryAfter(future), 30*time.Second)
}

package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(context.Context) error {
		calls++
		if calls < 3 {
			return eris.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(context.Context) error {
		calls++
		return eris.New("persistent")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoSingleAttemptNeverRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(1), func(context.Context) error {
		calls++
		return eris.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, fastConfig(5), func(context.Context) error {
		calls++
		cancel()
		return eris.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoInvokesOnRetry(t *testing.T) {
	var attempts []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error) {
		attempts = append(attempts, attempt)
	}

	_ = Do(context.Background(), cfg, func(context.Context) error {
		return eris.New("boom")
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoValReturnsValue(t *testing.T) {
	calls := 0
	got, err := DoVal(context.Background(), fastConfig(3), func(context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", eris.New("transient")
		}
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", got)
}

func TestDoValZeroValueOnFailure(t *testing.T) {
	got, err := DoVal(context.Background(), fastConfig(2), func(context.Context) (int, error) {
		return 42, eris.New("boom")
	})
	assert.Error(t, err)
	assert.Zero(t, got)
}

func TestComputeBackoffGrowsAndCaps(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     300 * time.Millisecond,
		Multiplier:     2.0,
	}

	assert.Equal(t, 100*time.Millisecond, computeBackoff(0, cfg))
	assert.Equal(t, 200*time.Millisecond, computeBackoff(1, cfg))
	assert.Equal(t, 300*time.Millisecond, computeBackoff(2, cfg))
	assert.Equal(t, 300*time.Millisecond, computeBackoff(5, cfg))
}

func TestApplyDefaults(t *testing.T) {
	cfg := applyDefaults(RetryConfig{})
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, 30*time.Second, cfg.MaxBackoff)
	assert.Equal(t, 2.0, cfg.Multiplier)
}

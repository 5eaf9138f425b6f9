package bybit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:    maxRetries,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestRetryWithConfig_SucceedsAfterRetryableFailures(t *testing.T) {
	client := NewClient(Config{})
	attempts := 0

	err := client.RetryWithConfig(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return NewBybitError(ErrCodeRateLimitExceeded, "rate limit exceeded")
		}
		return nil
	}, fastRetryConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithConfig_StopsOnNonRetryableError(t *testing.T) {
	client := NewClient(Config{})
	attempts := 0

	err := client.RetryWithConfig(context.Background(), func() error {
		attempts++
		return NewBybitError(ErrCodeInvalidAPIKey, "invalid key")
	}, fastRetryConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, IsAuthenticationError(err))
}

func TestRetryWithConfig_ExhaustsRetries(t *testing.T) {
	client := NewClient(Config{})
	attempts := 0

	err := client.RetryWithConfig(context.Background(), func() error {
		attempts++
		return NewBybitError(503, "service unavailable")
	}, fastRetryConfig(2))

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithConfig_RespectsCancellation(t *testing.T) {
	client := NewClient(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.RetryWithConfig(ctx, func() error {
		return NewBybitError(503, "service unavailable")
	}, fastRetryConfig(5))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateDelay_ExponentialBackoff(t *testing.T) {
	config := RetryConfig{
		InitialDelay:  time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2.0,
	}

	assert.Equal(t, time.Second, calculateDelay(0, config))
	assert.Equal(t, 2*time.Second, calculateDelay(1, config))
	assert.Equal(t, 4*time.Second, calculateDelay(2, config))
}

func TestCalculateDelay_CapsAtMax(t *testing.T) {
	config := RetryConfig{
		InitialDelay:  time.Second,
		MaxDelay:      3 * time.Second,
		BackoffFactor: 2.0,
	}

	assert.Equal(t, 3*time.Second, calculateDelay(10, config))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(NewBybitError(ErrCodeRateLimitExceeded, "")))
	assert.True(t, IsRetryableError(NewBybitError(502, "")))
	assert.False(t, IsRetryableError(NewBybitError(ErrCodeSymbolNotFound, "")))
	assert.False(t, IsRetryableError(fmt.Errorf("plain error")))
}

func TestWrapAPIError(t *testing.T) {
	assert.NoError(t, WrapAPIError("get klines", nil))

	wrapped := WrapAPIError("get klines", NewBybitError(ErrCodeSymbolNotFound, "symbol not found"))
	assert.Contains(t, wrapped.Error(), "get klines")

	plain := WrapAPIError("get klines", fmt.Errorf("boom"))
	assert.Contains(t, plain.Error(), "get klines failed")
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	breaker := NewCircuitBreaker(2, time.Minute)
	failing := func() error { return fmt.Errorf("boom") }

	require.Error(t, breaker.Call(failing))
	assert.Equal(t, CircuitClosed, breaker.State())

	require.Error(t, breaker.Call(failing))
	assert.Equal(t, CircuitOpen, breaker.State())

	// Calls are rejected without invoking the function while open.
	invoked := false
	err := breaker.Call(func() error {
		invoked = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, invoked)
}

func TestCircuitBreaker_RecoversAfterResetTimeout(t *testing.T) {
	breaker := NewCircuitBreaker(1, 10*time.Millisecond)

	require.Error(t, breaker.Call(func() error { return fmt.Errorf("boom") }))
	assert.Equal(t, CircuitOpen, breaker.State())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, breaker.Call(func() error { return nil }))
	assert.Equal(t, CircuitClosed, breaker.State())
}

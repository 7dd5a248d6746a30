package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterIntervalEnforced(t *testing.T) {
	current := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	limiter := NewSendLimiter(60*time.Second, 0).WithClock(func() time.Time { return current })

	require.NoError(t, limiter.Allow("+919876543210"))

	current = current.Add(30 * time.Second)
	assert.ErrorIs(t, limiter.Allow("+919876543210"), ErrTooSoon)

	current = current.Add(31 * time.Second)
	assert.NoError(t, limiter.Allow("+919876543210"))
}

func TestLimiterIdentifiersIndependent(t *testing.T) {
	current := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	limiter := NewSendLimiter(60*time.Second, 0).WithClock(func() time.Time { return current })

	require.NoError(t, limiter.Allow("a@example.com"))
	assert.NoError(t, limiter.Allow("b@example.com"))
}

func TestLimiterDailyCap(t *testing.T) {
	current := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	limiter := NewSendLimiter(time.Second, 3).WithClock(func() time.Time { return current })

	for i := 0; i < 3; i++ {
		current = current.Add(2 * time.Second)
		require.NoError(t, limiter.Allow("a@example.com"), "send %d", i+1)
	}

	current = current.Add(2 * time.Second)
	assert.ErrorIs(t, limiter.Allow("a@example.com"), ErrDailyCapReached)
}

func TestLimiterCapResetsNextDay(t *testing.T) {
	current := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	limiter := NewSendLimiter(time.Second, 1).WithClock(func() time.Time { return current })

	require.NoError(t, limiter.Allow("a@example.com"))

	current = current.Add(time.Hour)
	assert.ErrorIs(t, limiter.Allow("a@example.com"), ErrDailyCapReached)

	current = current.Add(24 * time.Hour)
	assert.NoError(t, limiter.Allow("a@example.com"))
}

func TestLimiterRetryAfter(t *testing.T) {
	current := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	limiter := NewSendLimiter(60*time.Second, 0).WithClock(func() time.Time { return current })

	assert.Equal(t, time.Duration(0), limiter.RetryAfter("a@example.com"))

	require.NoError(t, limiter.Allow("a@example.com"))
	current = current.Add(20 * time.Second)
	assert.Equal(t, 40*time.Second, limiter.RetryAfter("a@example.com"))

	current = current.Add(50 * time.Second)
	assert.Equal(t, time.Duration(0), limiter.RetryAfter("a@example.com"))
}

package notify

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrTooSoon means the identifier asked for another send before the
	// minimum interval elapsed.
	ErrTooSoon = errors.New("resend requested too soon")

	// ErrDailyCapReached means the identifier exhausted its sends for the day.
	ErrDailyCapReached = errors.New("daily send limit reached")
)

// SendLimiter throttles outbound notifications per identifier: a minimum
// interval between sends plus a daily cap. Counters live in the limiter, not
// in package globals, so each instance is testable in isolation.
type SendLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	dailyCap int
	last     map[string]time.Time
	counts   map[string]int
	day      time.Time
	now      func() time.Time
}

// NewSendLimiter creates a limiter. A dailyCap of 0 disables the cap.
func NewSendLimiter(interval time.Duration, dailyCap int) *SendLimiter {
	return &SendLimiter{
		interval: interval,
		dailyCap: dailyCap,
		last:     make(map[string]time.Time),
		counts:   make(map[string]int),
		now:      time.Now,
	}
}

// WithClock overrides the limiter's clock for tests.
func (l *SendLimiter) WithClock(now func() time.Time) *SendLimiter {
	l.now = now
	return l
}

// Allow records a send for the identifier, or reports why it is rejected.
func (l *SendLimiter) Allow(identifier string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	today := now.Truncate(24 * time.Hour)
	if !today.Equal(l.day) {
		l.day = today
		l.counts = make(map[string]int)
	}

	if last, ok := l.last[identifier]; ok && now.Sub(last) < l.interval {
		return ErrTooSoon
	}

	if l.dailyCap > 0 && l.counts[identifier] >= l.dailyCap {
		return ErrDailyCapReached
	}

	l.last[identifier] = now
	l.counts[identifier]++
	return nil
}

// RetryAfter reports how long the identifier must wait before the next send.
func (l *SendLimiter) RetryAfter(identifier string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.last[identifier]
	if !ok {
		return 0
	}
	remaining := l.interval - l.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

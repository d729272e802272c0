package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a token budget per minute window. It is used to stay
// under provider-side token quotas, in addition to a request-count limiter.
type TokenLimiter struct {
	mu          sync.Mutex
	limit       int
	used        int
	windowStart time.Time
}

// NewTokenLimiter creates a limiter allowing maxPerMinute tokens per minute.
func NewTokenLimiter(maxPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		limit:       maxPerMinute,
		windowStart: time.Now(),
	}
}

// GetRemaining returns the tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollWindow(time.Now())
	return l.limit - l.used
}

// Wait blocks until the given number of tokens fits in the current window or
// the context is canceled. Requests larger than the whole budget are admitted
// immediately rather than blocking forever.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.mu.Lock()
		now := time.Now()
		l.rollWindow(now)
		if l.used+tokens <= l.limit || tokens > l.limit {
			l.used += tokens
			l.mu.Unlock()
			return nil
		}
		wait := time.Minute - now.Sub(l.windowStart)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (l *TokenLimiter) rollWindow(now time.Time) {
	if now.Sub(l.windowStart) >= time.Minute {
		l.windowStart = now
		l.used = 0
	}
}

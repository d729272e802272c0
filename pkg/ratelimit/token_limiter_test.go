package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLimiter_WithinBudget(t *testing.T) {
	l := NewTokenLimiter(1000)

	require.NoError(t, l.Wait(context.Background(), 400))
	require.NoError(t, l.Wait(context.Background(), 400))
	assert.Equal(t, 200, l.GetRemaining())
}

func TestTokenLimiter_OversizedRequestAdmitted(t *testing.T) {
	l := NewTokenLimiter(100)

	done := make(chan error, 1)
	go func() {
		done <- l.Wait(context.Background(), 500)
	}()

	select {
	case err := <-done:
		require.NoError(t, err, "a request larger than the whole budget must not block forever")
	case <-time.After(time.Second):
		t.Fatal("oversized request blocked")
	}
}

func TestTokenLimiter_BlockedWaitHonorsContext(t *testing.T) {
	l := NewTokenLimiter(100)
	require.NoError(t, l.Wait(context.Background(), 100))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx, 50)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

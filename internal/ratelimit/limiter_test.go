package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllowsBurst(t *testing.T) {
	l := New("openlibrary", 2)

	assert.Equal(t, "openlibrary", l.Name())
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestEveryHonoursCancellation(t *testing.T) {
	l := Every("isbndb", time.Hour, 1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait for isbndb")
}

func TestUnlimited(t *testing.T) {
	l := Unlimited("local")
	for range 100 {
		require.True(t, l.Allow())
	}
}

func TestNilLimiterNeverBlocks(t *testing.T) {
	var l *Limiter
	assert.NoError(t, l.Wait(context.Background()))
	assert.True(t, l.Allow())
	assert.Equal(t, "", l.Name())
}

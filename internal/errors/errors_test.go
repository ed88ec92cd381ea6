package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("slow down")

	assert.Equal(t, "slow down", err.Error())
	assert.True(t, IsRateLimitError(err))
	assert.True(t, IsRateLimitError(stdErrors.Join(err)))
	assert.False(t, IsRateLimitError(stdErrors.New("slow down")))
}

func TestRateLimitErrorWithRetry(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{name: "zero", duration: 0, want: "rate limited"},
		{name: "seconds", duration: 30 * time.Second, want: "rate limited (retry after 30s)"},
		{name: "minutes", duration: 2 * time.Minute, want: "rate limited (retry after 2m0s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRateLimitErrorWithRetry("rate limited", tt.duration)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, tt.duration, err.RetryAfter)
		})
	}
}

func TestStopProcessingError(t *testing.T) {
	err := NewStopProcessingError("user stopped")

	assert.Equal(t, "user stopped", err.Error())
	assert.True(t, IsStopProcessingError(fmt.Errorf("review: %w", err)))
}

func TestParseError(t *testing.T) {
	err := NewParseError("csv", "record on line 3: wrong number of fields")

	assert.Equal(t, "csv parse error: record on line 3: wrong number of fields", err.Error())
	assert.True(t, IsParseError(fmt.Errorf("normalize: %w", err)))
	assert.Equal(t, "parse error: oops", (&ParseError{Msg: "oops"}).Error())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError([]string{"title or isbn required", "isbn contains invalid characters"})

	assert.Equal(t, "invalid record: title or isbn required; isbn contains invalid characters", err.Error())

	got, ok := AsValidationError(fmt.Errorf("create: %w", err))
	require.True(t, ok)
	assert.Len(t, got.Problems, 2)

	_, ok = AsValidationError(ErrNotFound)
	assert.False(t, ok)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("read abc: %w", ErrNotFound)))
	assert.False(t, IsNotFound(ErrInvalidArgument))
}

func TestIsInvalidArgument(t *testing.T) {
	assert.True(t, IsInvalidArgument(fmt.Errorf("write: %w", ErrInvalidArgument)))
	assert.False(t, IsInvalidArgument(ErrNotFound))
}

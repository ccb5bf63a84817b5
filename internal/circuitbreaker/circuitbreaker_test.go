package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errBoom = errors.New("boom")

func newTestBreaker(t *testing.T) (*Breaker, *time.Time) {
	t.Helper()
	now := time.Now()
	b := New("test", Settings{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Cooldown:         time.Minute,
		MaxProbes:        1,
	}, zap.NewNop())
	b.now = func() time.Time { return now }
	return b, &now
}

func fail(b *Breaker) error {
	return b.Do(context.Background(), func() error { return errBoom })
}

func succeed(b *Breaker) error {
	return b.Do(context.Background(), func() error { return nil })
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(t)

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, fail(b), errBoom)
	}
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, succeed(b), ErrOpen)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(t)

	require.ErrorIs(t, fail(b), errBoom)
	require.ErrorIs(t, fail(b), errBoom)
	require.NoError(t, succeed(b))
	require.ErrorIs(t, fail(b), errBoom)
	require.ErrorIs(t, fail(b), errBoom)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b, now := newTestBreaker(t)

	for i := 0; i < 3; i++ {
		_ = fail(b)
	}
	require.Equal(t, StateOpen, b.State())

	*now = now.Add(2 * time.Minute)
	require.Equal(t, StateHalfOpen, b.State())

	require.NoError(t, succeed(b))
	require.NoError(t, succeed(b))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker(t)

	for i := 0; i < 3; i++ {
		_ = fail(b)
	}
	*now = now.Add(2 * time.Minute)
	require.Equal(t, StateHalfOpen, b.State())

	require.ErrorIs(t, fail(b), errBoom)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerPropagatesPanic(t *testing.T) {
	b, _ := newTestBreaker(t)

	assert.Panics(t, func() {
		_ = b.Do(context.Background(), func() error { panic("kaput") })
	})
	// The panic counts as a failure.
	require.ErrorIs(t, fail(b), errBoom)
	require.ErrorIs(t, fail(b), errBoom)
	assert.Equal(t, StateOpen, b.State())
}

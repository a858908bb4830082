package status_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/pushkit/pkg/status"
)

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	t.Run("opens after threshold", func(t *testing.T) {
		t.Parallel()
		cb := status.NewCircuitBreaker(3, 1, time.Hour)
		for range 2 {
			cb.RecordFailure()
		}
		assert.True(t, cb.Allow())
		cb.RecordFailure()
		assert.Equal(t, status.CircuitOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("success resets failures", func(t *testing.T) {
		t.Parallel()
		cb := status.NewCircuitBreaker(2, 1, time.Hour)
		cb.RecordFailure()
		cb.RecordSuccess()
		cb.RecordFailure()
		assert.Equal(t, status.CircuitClosed, cb.State())
	})

	t.Run("half-open recovers", func(t *testing.T) {
		t.Parallel()
		cb := status.NewCircuitBreaker(1, 2, 10*time.Millisecond)
		cb.RecordFailure()
		assert.False(t, cb.Allow())

		time.Sleep(20 * time.Millisecond)
		assert.True(t, cb.Allow())
		assert.Equal(t, status.CircuitHalfOpen, cb.State())

		cb.RecordSuccess()
		assert.Equal(t, status.CircuitHalfOpen, cb.State())
		cb.RecordSuccess()
		assert.Equal(t, status.CircuitClosed, cb.State())
	})

	t.Run("half-open failure reopens", func(t *testing.T) {
		t.Parallel()
		cb := status.NewCircuitBreaker(1, 1, 10*time.Millisecond)
		cb.RecordFailure()
		time.Sleep(20 * time.Millisecond)
		assert.True(t, cb.Allow())
		cb.RecordFailure()
		assert.Equal(t, status.CircuitOpen, cb.State())
	})

	assert.Equal(t, "half-open", status.CircuitHalfOpen.String())
}

func TestExponentialBackoff(t *testing.T) {
	t.Parallel()

	b := status.ExponentialBackoff{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
	}
	assert.Equal(t, time.Duration(0), b.NextInterval(0))
	assert.Equal(t, 100*time.Millisecond, b.NextInterval(1))
	assert.Equal(t, 400*time.Millisecond, b.NextInterval(3))
	assert.Equal(t, time.Second, b.NextInterval(10))

	jittered := status.ExponentialBackoff{InitialInterval: 100 * time.Millisecond, JitterFactor: 0.5}
	for range 20 {
		d := jittered.NextInterval(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerTripsAtThreshold(t *testing.T) {
	b := NewBreaker("test", 3, time.Minute)
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())

	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker("test", 3, time.Minute)
	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker("test", 1, 10*time.Millisecond)
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())

	time.Sleep(15 * time.Millisecond)

	t.Run("probe allowed after cool-off", func(t *testing.T) {
		assert.True(t, b.Allow())
		assert.Equal(t, StateHalfOpen, b.State())
	})

	t.Run("probe success closes", func(t *testing.T) {
		b.RecordSuccess()
		assert.Equal(t, StateClosed, b.State())
		assert.True(t, b.Allow())
	})
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker("test", 1, 5*time.Millisecond)
	b.RecordFailure()
	time.Sleep(10 * time.Millisecond)
	assert.True(t, b.Allow()) // half-open probe

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreakerDefaults(t *testing.T) {
	b := NewBreaker("test", 0, 0)
	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State(), "default threshold is 3")
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
}

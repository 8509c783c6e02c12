package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseIntervalDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"15m", 15 * time.Minute, true},
		{"1h", time.Hour, true},
		{"4H", 4 * time.Hour, true},
		{" 1d ", 24 * time.Hour, true},
		{"1w", 7 * 24 * time.Hour, true},
		{"", 0, false},
		{"h", 0, false},
		{"0h", 0, false},
		{"-2h", 0, false},
		{"10x", 0, false},
		{"1.5h", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseIntervalDuration(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestAlignedSchedulerFiresOnBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewAlignedScheduler(ctx, 50*time.Millisecond, 0)
	s.Name = "test"

	fired := make(chan struct{}, 16)
	go s.Start(func() {
		select {
		case fired <- struct{}{}:
		default:
		}
		cancel()
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduler never fired")
	}
}

func TestAlignedSchedulerRunImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewAlignedScheduler(ctx, time.Hour, 0)
	s.RunImmediately = true

	fired := make(chan struct{}, 1)
	go s.Start(func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("immediate run did not happen")
	}
}

func TestAlignedSchedulerInvalidInterval(t *testing.T) {
	s := NewAlignedScheduler(context.Background(), 0, 0)
	done := make(chan struct{})
	go func() {
		s.Start(func() { t.Error("task must not run") })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler with zero interval should return at once")
	}
}

func TestAlignedSchedulerStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewAlignedScheduler(ctx, time.Hour, 0)

	done := make(chan struct{})
	go func() {
		s.Start(func() {})
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not exit on context cancel")
	}
}

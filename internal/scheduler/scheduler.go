// Package scheduler runs tasks aligned to wall-clock boundaries. The
// engine uses it for the session rollover: the daily loss latch and the
// session VWAP reset fire exactly at the interval boundary, not at a
// drifting "every 24h since start".
package scheduler

import (
	"context"
	"time"

	"alphatick/internal/logger"
)

type AlignedScheduler struct {
	Name           string
	Interval       time.Duration
	Offset         time.Duration
	RunImmediately bool

	ctx   context.Context
	nowFn func() time.Time
}

func NewAlignedScheduler(ctx context.Context, interval, offset time.Duration) *AlignedScheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &AlignedScheduler{
		Interval: interval,
		Offset:   offset,
		ctx:      ctx,
		nowFn:    time.Now,
	}
}

// Start blocks, running task at every aligned boundary until the
// context ends.
func (s *AlignedScheduler) Start(task func()) {
	if s == nil || task == nil {
		return
	}
	if s.Interval <= 0 {
		logger.Warnf("AlignedScheduler %s: invalid interval=%s, exit", s.Name, s.Interval)
		return
	}
	if s.Offset < 0 {
		s.Offset = 0
	}
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}

	logger.Infof("AlignedScheduler %s: started interval=%s offset=%s", s.Name, s.Interval, s.Offset)
	if s.RunImmediately {
		task()
	}

	for {
		now := s.nowFn().UTC()
		wakeAt := now.Truncate(s.Interval).Add(s.Interval).Add(s.Offset)
		wait := wakeAt.Sub(now)
		if wait <= 0 {
			task()
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			logger.Infof("AlignedScheduler %s: ctx done, exit", s.Name)
			return
		case <-timer.C:
		}
		task()
	}
}

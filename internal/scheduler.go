package sysdash

import (
	"context"
	"sync/atomic"
	"time"
)

// Scheduler fires a callback at a fixed interval, starting immediately.
// Every tick carries a sequence number greater than all earlier ones.
type Scheduler struct {
	Interval time.Duration
	seq      atomic.Uint64
}

func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = UpdateDuration()
	}
	return &Scheduler{Interval: interval}
}

// Run blocks until ctx is done. tick must not block for long; slow work
// belongs in its own goroutine so ticks keep their cadence.
func (s *Scheduler) Run(ctx context.Context, tick func(seq uint64)) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	tick(s.Next())
	for {
		select {
		case <-ticker.C:
			tick(s.Next())
		case <-ctx.Done():
			return
		}
	}
}

// Next hands out the next sequence number, for ticks fired outside Run
func (s *Scheduler) Next() uint64 {
	return s.seq.Add(1)
}

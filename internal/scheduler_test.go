package sysdash

import (
	"context"
	"testing"
	"time"
)

func TestSchedulerFiresImmediatelyWithIncreasingSeq(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	seqs := make(chan uint64, 100)
	done := make(chan struct{})
	go func() {
		s.Run(ctx, func(seq uint64) { seqs <- seq })
		close(done)
	}()

	var got []uint64
	timeout := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case seq := <-seqs:
			got = append(got, seq)
		case <-timeout:
			t.Fatalf("only %d ticks before timeout", len(got))
		}
	}
	cancel()
	<-done

	if got[0] != 1 {
		t.Errorf("first seq = %d, want 1", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Errorf("seq %d after %d is not increasing", got[i], got[i-1])
		}
	}

	// manual refreshes continue the same sequence
	if next := s.Next(); next <= got[len(got)-1] {
		t.Errorf("Next() = %d, not above %d", next, got[len(got)-1])
	}
}

func TestNewSchedulerDefaultInterval(t *testing.T) {
	if got := NewScheduler(0).Interval; got != 2*time.Second {
		t.Errorf("default interval = %v, want 2s", got)
	}
}

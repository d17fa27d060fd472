package sysdash

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Headless runs the refresh loop without a terminal UI, writing the page
// as plain text after every applied or failed tick. Fetches overlap freely;
// their results funnel through one channel so a single goroutine owns the
// state.
func Headless(ctx context.Context, src DetectedSource, interval time.Duration, history int, out io.Writer) error {
	ctrl := NewController(src.Data, NewDashboardState(history))
	sched := NewScheduler(interval)

	results := make(chan FetchResult)
	go sched.Run(ctx, func(seq uint64) {
		go func() {
			res := ctrl.Fetch(ctx, seq)
			select {
			case results <- res:
			case <-ctx.Done():
			}
		}()
	})

	for {
		select {
		case <-ctx.Done():
			return nil
		case res := <-results:
			ctrl.Handle(res)
			if _, err := fmt.Fprintln(out, PlainView(ctrl.State())); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		}
	}
}

// FetchOnce performs a single fetch, as used by the snapshot command
func FetchOnce(ctx context.Context, src Data) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout())
	defer cancel()
	return src.Fetch(ctx)
}

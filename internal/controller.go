package sysdash

import (
	"context"
	"errors"
	"log"
)

// FetchResult is the outcome of one scheduled fetch
type FetchResult struct {
	Seq      uint64
	Snapshot *Snapshot
	Err      error
}

// Controller owns the dashboard state. Fetch may run concurrently for
// overlapping ticks; Handle must be called from a single goroutine.
type Controller struct {
	source  Data
	state   *DashboardState
	lastSeq uint64
}

func NewController(source Data, state *DashboardState) *Controller {
	return &Controller{source: source, state: state}
}

func (c *Controller) State() *DashboardState {
	return c.state
}

// Fetch runs one independent attempt against the source
func (c *Controller) Fetch(ctx context.Context, seq uint64) FetchResult {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout())
	defer cancel()

	snap, err := c.source.Fetch(ctx)
	return FetchResult{Seq: seq, Snapshot: snap, Err: err}
}

// Handle applies a result if it is newer than every result seen so far.
// Failures leave charts and history untouched; a fetch failure flips the
// status badge to Error, a soft failure only logs. Returns whether the
// snapshot was rendered.
func (c *Controller) Handle(res FetchResult) bool {
	if res.Seq <= c.lastSeq {
		log.Printf("dropping stale response #%d (latest #%d)", res.Seq, c.lastSeq)
		return false
	}
	c.lastSeq = res.Seq

	if res.Err != nil {
		var soft *SoftDataError
		if errors.As(res.Err, &soft) {
			log.Printf("Error fetching data: %v", soft.Message)
			return false
		}
		log.Printf("Error fetching system data: %v", res.Err)
		c.state.Page.SetStatus("Error", BadgeError)
		return false
	}
	if res.Snapshot == nil {
		log.Printf("empty response #%d", res.Seq)
		return false
	}

	if err := Render(c.state, res.Snapshot); err != nil {
		log.Printf("partial render #%d: %v", res.Seq, err)
	}
	return true
}

package sync

import (
	"context"
	"time"
)

// DefaultInterval is the fallback cadence for timer-driven reconciliation.
const DefaultInterval = 2 * time.Second

// Trigger decides when reconciliation passes run. The engine itself is
// timing-agnostic; swapping a timer for a mutation watcher never touches
// reconciliation logic.
type Trigger interface {
	// Run invokes pass for every trigger event until ctx is cancelled.
	// Pass invocations are sequential within one trigger.
	Run(ctx context.Context, pass func(context.Context)) error
}

// TickerTrigger fires a pass at a fixed interval.
type TickerTrigger struct {
	// Interval between passes. Zero means DefaultInterval.
	Interval time.Duration
}

// Run fires passes until ctx is cancelled. The first pass runs
// immediately rather than one interval in.
func (t *TickerTrigger) Run(ctx context.Context, pass func(context.Context)) error {
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	pass(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pass(ctx)
		}
	}
}

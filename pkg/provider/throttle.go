package provider

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Throttle enforces a minimum delay between consecutive calls. It is a
// cooperative throttle, not a token bucket: all calls are expected to go
// through a single caller.
type Throttle struct {
	clock clockwork.Clock
	delay time.Duration
	last  time.Time
}

func NewThrottle(delay time.Duration, clock clockwork.Clock) *Throttle {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Throttle{clock: clock, delay: delay}
}

// Wait blocks until at least the configured delay has passed since the
// previous call. The first call returns immediately.
func (t *Throttle) Wait(ctx context.Context) error {
	if !t.last.IsZero() {
		remaining := t.delay - t.clock.Since(t.last)
		if remaining > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.clock.After(remaining):
			}
		}
	}
	t.last = t.clock.Now()
	return nil
}

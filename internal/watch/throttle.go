package watch

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// throttle ensures a minimum interval between successive operations.
type throttle struct {
	interval time.Duration
	clock    clockwork.Clock

	mu   sync.Mutex
	next time.Time
}

func newThrottle(interval time.Duration, clock clockwork.Clock) *throttle {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval < 0 {
		interval = 0
	}
	return &throttle{interval: interval, clock: clock}
}

// wait blocks until the next slot opens or ctx ends. It reports whether
// the caller got the slot.
func (t *throttle) wait(ctx context.Context) bool {
	if t == nil || t.interval <= 0 {
		return ctx.Err() == nil
	}
	for {
		t.mu.Lock()
		now := t.clock.Now()
		wait := t.next.Sub(now)
		if wait <= 0 {
			t.next = now.Add(t.interval)
			t.mu.Unlock()
			return true
		}
		t.mu.Unlock()
		if wait > t.interval {
			wait = t.interval
		}
		select {
		case <-ctx.Done():
			return false
		case <-t.clock.After(wait):
		}
	}
}

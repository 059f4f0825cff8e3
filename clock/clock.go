// Package clock provides the monotonic time source and sleep primitives used
// by the schedulers.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock is a monotonic time source. Now reports time elapsed since the clock
// was created, so values are comparable only within one clock.
type Clock interface {
	Now() time.Duration
	// Sleep suspends for d or until ctx is done, whichever comes first.
	// It returns ctx.Err() if the context ended the sleep.
	Sleep(ctx context.Context, d time.Duration) error
}

// SleepUntil sleeps until the clock reaches deadline. A deadline already in
// the past returns immediately; slow ticks are not caught up.
func SleepUntil(ctx context.Context, c Clock, deadline time.Duration) error {
	if d := deadline - c.Now(); d > 0 {
		return c.Sleep(ctx, d)
	}
	return ctx.Err()
}

// Real is a Clock backed by the runtime's monotonic clock.
type Real struct {
	start time.Time
}

// NewReal returns a Real clock starting at zero.
func NewReal() *Real {
	return &Real{start: time.Now()}
}

// Now returns the time elapsed since the clock was created.
func (r *Real) Now() time.Duration {
	return time.Since(r.start)
}

// Sleep blocks for d or until ctx is done.
func (r *Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Manual is a Clock that only moves when told to. Sleep advances the clock by
// the requested duration and returns immediately, which makes single-threaded
// schedules fully reproducible. It is safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Duration
}

// NewManual returns a Manual clock reading start.
func NewManual(start time.Duration) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Sleep advances the clock by d without blocking.
func (m *Manual) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d > 0 {
		m.Advance(d)
	}
	return nil
}

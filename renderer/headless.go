package renderer

import (
	"context"
	"sync/atomic"

	"github.com/pthm-cable/swarm/components"
)

// Headless accepts frames without drawing them. It is both a Renderer and an
// Input; a stop is requested from outside, either directly with RequestStop
// or when a context passed to StopOnDone ends (a signal context in main).
type Headless struct {
	frames   atomic.Int64
	lastSize atomic.Int64
	stop     atomic.Bool
}

// NewHeadless returns a renderer that draws nothing.
func NewHeadless() *Headless {
	return &Headless{}
}

// Present counts the frame.
func (h *Headless) Present(snap components.Snapshot) error {
	h.frames.Add(1)
	h.lastSize.Store(int64(len(snap)))
	return nil
}

// PollStopRequested reports whether RequestStop has been called.
func (h *Headless) PollStopRequested() bool {
	return h.stop.Load()
}

// RequestStop asks the run to end at the next renderer tick.
func (h *Headless) RequestStop() {
	h.stop.Store(true)
}

// StopOnDone requests a stop once ctx is done. The returned function
// detaches the hook and reports whether it did so before it fired.
func (h *Headless) StopOnDone(ctx context.Context) (detach func() bool) {
	return context.AfterFunc(ctx, h.RequestStop)
}

// Frames returns the number of frames presented.
func (h *Headless) Frames() int { return int(h.frames.Load()) }

// LastSize returns the agent count of the last frame presented.
func (h *Headless) LastSize() int { return int(h.lastSize.Load()) }

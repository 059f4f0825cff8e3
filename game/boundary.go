package game

import "github.com/pthm-cable/swarm/components"

// Renderer presents a snapshot of the swarm. Present is only ever called from
// the single renderer task, at most once per renderer tick. The snapshot's
// storage is reused after Present returns. An error ends the run.
type Renderer interface {
	Present(snap components.Snapshot) error
}

// Input reports whether the user asked to stop. PollStopRequested must not
// block; it drains pending input and is called once per renderer tick.
type Input interface {
	PollStopRequested() bool
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(components.Snapshot) error

// Present calls f(snap).
func (f RendererFunc) Present(snap components.Snapshot) error { return f(snap) }

// InputFunc adapts a function to Input.
type InputFunc func() bool

// PollStopRequested calls f().
func (f InputFunc) PollStopRequested() bool { return f() }

// neverStop is the Input used when none is configured.
var neverStop = InputFunc(func() bool { return false })

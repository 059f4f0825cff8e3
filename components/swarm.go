// Package components defines the plain data shared between the simulation,
// the renderers and telemetry.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Color is an opaque display attribute. The simulation never interprets it.
type Color struct {
	R, G, B uint8
}

// Entry is one agent as seen by a renderer.
type Entry struct {
	Position r2.Vec
	Color    Color
}

// Snapshot is a read-only copy of agent state taken for rendering.
// Renderers must not retain a Snapshot past the Present call that received it;
// schedulers reuse the backing array between frames.
type Snapshot []Entry

// Clone returns a copy that is safe to retain.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

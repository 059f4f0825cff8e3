// Package systems implements the per-agent steering update and the swarm
// centroid tracker.
package systems

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarm/components"
)

// ErrInvalidConfiguration is returned when a swarm or agent is constructed
// with parameters that would break its invariants.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Agent is a single swarm member. Its position is published atomically so a
// renderer may read it while the agent's own task writes it; every other
// field is either immutable or touched only by the agent's update.
type Agent struct {
	pos        atomic.Pointer[r2.Vec]
	color      components.Color
	speed      float64       // units per second
	cadence    time.Duration // interval between own updates
	lastUpdate time.Duration
}

// NewAgent creates an agent at pos whose last update happened at now.
func NewAgent(pos r2.Vec, color components.Color, speed float64, cadence, now time.Duration) (*Agent, error) {
	if speed < 0 || math.IsNaN(speed) {
		return nil, fmt.Errorf("agent speed %v: %w", speed, ErrInvalidConfiguration)
	}
	if cadence <= 0 {
		return nil, fmt.Errorf("agent cadence %v: %w", cadence, ErrInvalidConfiguration)
	}
	a := &Agent{
		color:      color,
		speed:      speed,
		cadence:    cadence,
		lastUpdate: now,
	}
	a.pos.Store(&pos)
	return a, nil
}

// Position returns the most recently published position.
func (a *Agent) Position() r2.Vec {
	return *a.pos.Load()
}

// Color returns the agent's display color.
func (a *Agent) Color() components.Color { return a.color }

// Speed returns the agent's travel speed in units per second.
func (a *Agent) Speed() float64 { return a.speed }

// Cadence returns the interval between the agent's own updates.
func (a *Agent) Cadence() time.Duration { return a.cadence }

// LastUpdate returns the timestamp of the previous update.
// Only the goroutine that calls Update may read it.
func (a *Agent) LastUpdate() time.Duration { return a.lastUpdate }

// Update steers the agent toward centroid for the time elapsed since its last
// update and publishes the new position.
//
// The direction is delta / max(1, |delta|): within one unit of the centroid
// the step shrinks instead of blowing up, and an agent sitting exactly on the
// centroid does not move. The centroid is a sample that moves with the swarm,
// so rarely-updated agents overshoot and large swarms need not converge.
func (a *Agent) Update(centroid r2.Vec, now time.Duration) r2.Vec {
	pos := a.Position()
	delta := r2.Sub(centroid, pos)
	dir := r2.Scale(1/math.Max(1, r2.Norm(delta)), delta)

	dt := (now - a.lastUpdate).Seconds()
	next := r2.Add(pos, r2.Scale(a.speed*dt, dir))

	a.pos.Store(&next)
	a.lastUpdate = now
	return next
}

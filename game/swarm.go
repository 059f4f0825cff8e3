// Package game drives the swarm: it owns the agents and their shared
// centroid, and schedules agent updates and rendering under one of two
// interchangeable strategies.
package game

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarm/clock"
	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/systems"
)

// ErrInvalidConfiguration is returned for parameters that cannot produce a
// valid run, most importantly an empty swarm.
var ErrInvalidConfiguration = systems.ErrInvalidConfiguration

// SwarmConfig controls random swarm creation.
type SwarmConfig struct {
	Agents     int
	Bounds     orb.Bound // initial placement only
	Speed      float64
	MinCadence time.Duration // inclusive
	MaxCadence time.Duration // exclusive; equal to MinCadence for a fixed cadence
}

func (c SwarmConfig) validate() error {
	switch {
	case c.Agents < 1:
		return fmt.Errorf("swarm of %d agents: %w", c.Agents, ErrInvalidConfiguration)
	case c.MinCadence <= 0:
		return fmt.Errorf("min cadence %v: %w", c.MinCadence, ErrInvalidConfiguration)
	case c.MaxCadence < c.MinCadence:
		return fmt.Errorf("max cadence %v below min %v: %w", c.MaxCadence, c.MinCadence, ErrInvalidConfiguration)
	case !(c.Bounds.Max.X() > c.Bounds.Min.X() && c.Bounds.Max.Y() > c.Bounds.Min.Y()):
		return fmt.Errorf("arena %v has no area: %w", c.Bounds, ErrInvalidConfiguration)
	}
	return nil
}

// Swarm is the arena: an ordered, fixed set of agents plus their centroid.
type Swarm struct {
	agents   []*systems.Agent
	centroid *systems.Centroid
	bounds   orb.Bound

	frames  atomic.Int64
	updates atomic.Int64 // agent updates since the last frame
}

// NewSwarm creates cfg.Agents agents with random positions inside the arena,
// random colors and random cadences. The initial centroid is computed before
// NewSwarm returns.
func NewSwarm(cfg SwarmConfig, clk clock.Clock, rng *rand.Rand) (*Swarm, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	now := clk.Now()
	agents := make([]*systems.Agent, cfg.Agents)
	for i := range agents {
		a, err := systems.NewAgent(randomPoint(cfg.Bounds, rng), randomColor(rng), cfg.Speed, randomCadence(cfg, rng), now)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
		agents[i] = a
	}
	return NewSwarmFromAgents(agents, cfg.Bounds)
}

// NewSwarmFromAgents builds a swarm around existing agents.
func NewSwarmFromAgents(agents []*systems.Agent, bounds orb.Bound) (*Swarm, error) {
	centroid, err := systems.NewCentroid(agents)
	if err != nil {
		return nil, fmt.Errorf("swarm of %d agents: %w", len(agents), err)
	}
	return &Swarm{
		agents:   agents,
		centroid: centroid,
		bounds:   bounds,
	}, nil
}

func randomPoint(b orb.Bound, rng *rand.Rand) r2.Vec {
	return r2.Vec{
		X: b.Min.X() + rng.Float64()*(b.Max.X()-b.Min.X()),
		Y: b.Min.Y() + rng.Float64()*(b.Max.Y()-b.Min.Y()),
	}
}

func randomColor(rng *rand.Rand) components.Color {
	return components.Color{
		R: uint8(rng.Intn(255)),
		G: uint8(rng.Intn(255)),
		B: uint8(rng.Intn(255)),
	}
}

func randomCadence(cfg SwarmConfig, rng *rand.Rand) time.Duration {
	span := cfg.MaxCadence - cfg.MinCadence
	if span <= 0 {
		return cfg.MinCadence
	}
	return cfg.MinCadence + time.Duration(rng.Int63n(int64(span)))
}

// Agents returns the agents in their stable iteration order.
func (s *Swarm) Agents() []*systems.Agent { return s.agents }

// Len returns the number of agents.
func (s *Swarm) Len() int { return len(s.agents) }

// Centroid returns the swarm's centroid tracker.
func (s *Swarm) Centroid() *systems.Centroid { return s.centroid }

// Bounds returns the arena used for initial placement.
func (s *Swarm) Bounds() orb.Bound { return s.bounds }

// Frames returns the number of frames presented so far.
func (s *Swarm) Frames() int { return int(s.frames.Load()) }

func (s *Swarm) nextFrame() int { return int(s.frames.Add(1)) }

// Snapshot copies every agent's position and color.
func (s *Swarm) Snapshot() components.Snapshot {
	return s.SnapshotInto(make(components.Snapshot, 0, len(s.agents)))
}

// SnapshotInto appends a snapshot to dst[:0] and returns it, reusing dst's
// storage when large enough. Each position is read atomically; positions of
// different agents may come from different moments.
func (s *Swarm) SnapshotInto(dst components.Snapshot) components.Snapshot {
	dst = dst[:0]
	for _, a := range s.agents {
		dst = append(dst, components.Entry{Position: a.Position(), Color: a.Color()})
	}
	return dst
}

// Outside counts agents whose position lies outside the arena.
func (s *Swarm) Outside() int {
	n := 0
	for _, a := range s.agents {
		p := a.Position()
		if !s.bounds.Contains(orb.Point{p.X, p.Y}) {
			n++
		}
	}
	return n
}

package systems

import (
	"fmt"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Centroid tracks the mean position of the swarm.
//
// One goroutine recomputes and publishes; any number of goroutines may read
// the last published value without locking. Readers see a value consistent
// with some earlier set of positions, never a half-written one.
type Centroid struct {
	value      atomic.Pointer[r2.Vec]
	recomputes atomic.Uint64

	// scratch, owned by the recomputing goroutine
	xs, ys []float64
}

// NewCentroid computes the initial centroid of agents. An empty agent set has
// no mean and is rejected.
func NewCentroid(agents []*Agent) (*Centroid, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("centroid of 0 agents: %w", ErrInvalidConfiguration)
	}
	c := &Centroid{
		xs: make([]float64, 0, len(agents)),
		ys: make([]float64, 0, len(agents)),
	}
	c.Recompute(agents)
	return c, nil
}

// Recompute publishes the arithmetic mean of the agents' current positions
// and returns it. agents must be non-empty.
func (c *Centroid) Recompute(agents []*Agent) r2.Vec {
	c.xs = c.xs[:0]
	c.ys = c.ys[:0]
	for _, a := range agents {
		p := a.Position()
		c.xs = append(c.xs, p.X)
		c.ys = append(c.ys, p.Y)
	}

	n := float64(len(agents))
	v := r2.Vec{X: floats.Sum(c.xs) / n, Y: floats.Sum(c.ys) / n}
	c.value.Store(&v)
	c.recomputes.Add(1)
	return v
}

// Value returns the most recently published centroid.
func (c *Centroid) Value() r2.Vec {
	return *c.value.Load()
}

// Recomputes returns how many times the centroid has been published,
// including the initial computation.
func (c *Centroid) Recomputes() uint64 {
	return c.recomputes.Load()
}

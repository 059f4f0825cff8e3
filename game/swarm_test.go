package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarm/clock"
	"github.com/pthm-cable/swarm/components"
)

func testSwarmConfig(n int) SwarmConfig {
	return SwarmConfig{
		Agents:     n,
		Bounds:     testBounds,
		Speed:      50,
		MinCadence: 20 * time.Millisecond,
		MaxCadence: 200 * time.Millisecond,
	}
}

func TestNewSwarmRejectsEmpty(t *testing.T) {
	_, err := NewSwarm(testSwarmConfig(0), clock.NewManual(0), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewSwarmFromAgents(nil, testBounds)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestNewSwarmRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*SwarmConfig)
	}{
		{"negative agents", func(c *SwarmConfig) { c.Agents = -3 }},
		{"zero cadence", func(c *SwarmConfig) { c.MinCadence = 0 }},
		{"inverted cadence", func(c *SwarmConfig) { c.MaxCadence = c.MinCadence - 1 }},
		{"negative speed", func(c *SwarmConfig) { c.Speed = -1 }},
		{"empty arena", func(c *SwarmConfig) { c.Bounds = orb.Bound{} }},
		{"zero width arena", func(c *SwarmConfig) {
			c.Bounds = orb.Bound{Min: orb.Point{10, 0}, Max: orb.Point{10, 750}}
		}},
		{"zero height arena", func(c *SwarmConfig) {
			c.Bounds = orb.Bound{Min: orb.Point{0, 5}, Max: orb.Point{1000, 5}}
		}},
		{"inverted arena", func(c *SwarmConfig) {
			c.Bounds = orb.Bound{Min: orb.Point{1000, 750}, Max: orb.Point{0, 0}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testSwarmConfig(10)
			tt.modify(&cfg)
			_, err := NewSwarm(cfg, clock.NewManual(0), rand.New(rand.NewSource(1)))
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestNewSwarmRandomPlacement(t *testing.T) {
	cfg := testSwarmConfig(500)
	s, err := NewSwarm(cfg, clock.NewManual(time.Second), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	require.Equal(t, 500, s.Len())
	assert.Equal(t, 0, s.Outside(), "every agent starts inside the arena")

	cadences := make(map[time.Duration]bool)
	for _, a := range s.Agents() {
		assert.GreaterOrEqual(t, a.Cadence(), cfg.MinCadence)
		assert.Less(t, a.Cadence(), cfg.MaxCadence)
		assert.Equal(t, time.Second, a.LastUpdate())
		cadences[a.Cadence()] = true
	}
	assert.Greater(t, len(cadences), 1, "cadences are heterogeneous")

	// Initial centroid is available before any update
	assert.Equal(t, uint64(1), s.Centroid().Recomputes())
	assert.True(t, testBounds.Contains(orb.Point{s.Centroid().Value().X, s.Centroid().Value().Y}))
}

func TestNewSwarmSeedReproducible(t *testing.T) {
	a, err := NewSwarm(testSwarmConfig(50), clock.NewManual(0), rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	b, err := NewSwarm(testSwarmConfig(50), clock.NewManual(0), rand.New(rand.NewSource(99)))
	require.NoError(t, err)

	assert.Equal(t, a.Snapshot(), b.Snapshot())
}

func TestNewSwarmFixedCadence(t *testing.T) {
	cfg := testSwarmConfig(5)
	cfg.MaxCadence = cfg.MinCadence
	s, err := NewSwarm(cfg, clock.NewManual(0), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	for _, a := range s.Agents() {
		assert.Equal(t, cfg.MinCadence, a.Cadence())
	}
}

func TestSnapshot(t *testing.T) {
	s := fixedSwarm(t, time.Millisecond, r2.Vec{X: 1, Y: 2}, r2.Vec{X: 3, Y: 4})

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, r2.Vec{X: 1, Y: 2}, snap[0].Position)
	assert.Equal(t, uint8(1), snap[1].Color.R)

	// Reuses storage
	buf := make([]components.Entry, 0, 8)
	out := s.SnapshotInto(buf)
	assert.Equal(t, snap, out)
	assert.Equal(t, 8, cap(out))
}

func TestOutside(t *testing.T) {
	s := fixedSwarm(t, time.Millisecond,
		r2.Vec{X: 10, Y: 10},
		r2.Vec{X: -5, Y: 10},
		r2.Vec{X: 500, Y: 900},
	)
	assert.Equal(t, 2, s.Outside())
}

package game

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/systems"
)

var errBoom = errors.New("boom")

var testBounds = orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1000, 750}}

// recordingRenderer keeps a copy of every snapshot it is given.
type recordingRenderer struct {
	mu       sync.Mutex
	frames   []components.Snapshot
	inFlight atomic.Int32
	overlap  atomic.Bool
	failAt   int // 1-based frame that returns errBoom; 0 = never
	onFrame  func(n int, snap components.Snapshot)
}

func (r *recordingRenderer) Present(snap components.Snapshot) error {
	if r.inFlight.Add(1) > 1 {
		r.overlap.Store(true)
	}
	defer r.inFlight.Add(-1)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.frames) + 1
	if r.failAt > 0 && n == r.failAt {
		return errBoom
	}
	r.frames = append(r.frames, snap.Clone())
	if r.onFrame != nil {
		r.onFrame(n, snap)
	}
	return nil
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recordingRenderer) frame(i int) components.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[i]
}

// stopAfterPolls returns an Input that requests a stop on poll n.
func stopAfterPolls(n int) Input {
	var polls atomic.Int32
	return InputFunc(func() bool {
		return int(polls.Add(1)) >= n
	})
}

// fixedSwarm builds a small swarm with hand-placed agents.
func fixedSwarm(t *testing.T, cadence time.Duration, pts ...r2.Vec) *Swarm {
	t.Helper()
	agents := make([]*systems.Agent, len(pts))
	for i, p := range pts {
		a, err := systems.NewAgent(p, components.Color{R: uint8(i)}, 50, cadence, 0)
		require.NoError(t, err)
		agents[i] = a
	}
	s, err := NewSwarmFromAgents(agents, testBounds)
	require.NoError(t, err)
	return s
}

func positions(s *Swarm) []r2.Vec {
	out := make([]r2.Vec, s.Len())
	for i, a := range s.Agents() {
		out[i] = a.Position()
	}
	return out
}

package systems

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarm/components"
)

func newTestAgent(t *testing.T, x, y float64, now time.Duration) *Agent {
	t.Helper()
	a, err := NewAgent(r2.Vec{X: x, Y: y}, components.Color{R: 1, G: 2, B: 3}, 50, 100*time.Millisecond, now)
	require.NoError(t, err)
	return a
}

func TestNewAgentRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name    string
		speed   float64
		cadence time.Duration
	}{
		{"negative speed", -1, time.Millisecond},
		{"NaN speed", math.NaN(), time.Millisecond},
		{"zero cadence", 10, 0},
		{"negative cadence", 10, -time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAgent(r2.Vec{}, components.Color{}, tt.speed, tt.cadence, 0)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestUpdateZeroDtKeepsPosition(t *testing.T) {
	a := newTestAgent(t, 12.5, -3, time.Second)

	got := a.Update(r2.Vec{X: 500, Y: 500}, time.Second)

	assert.Equal(t, r2.Vec{X: 12.5, Y: -3}, got)
	assert.Equal(t, got, a.Position())
}

func TestUpdateMovesTowardCentroid(t *testing.T) {
	tests := []struct {
		name     string
		from     r2.Vec
		centroid r2.Vec
		dt       time.Duration
	}{
		{"axis aligned", r2.Vec{X: 0, Y: 0}, r2.Vec{X: 10, Y: 0}, 100 * time.Millisecond},
		{"diagonal", r2.Vec{X: 100, Y: 100}, r2.Vec{X: 400, Y: 500}, 200 * time.Millisecond},
		{"negative quadrant", r2.Vec{X: -20, Y: 35}, r2.Vec{X: -200, Y: -80}, 50 * time.Millisecond},
		{"sub-unit distance", r2.Vec{X: 0, Y: 0}, r2.Vec{X: 0.5, Y: 0.5}, 10 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAgent(t, tt.from.X, tt.from.Y, 0)
			dist := r2.Norm(r2.Sub(tt.centroid, tt.from))
			travel := a.Speed() * tt.dt.Seconds()
			require.Less(t, travel, dist, "fixture must not allow overshoot")

			got := a.Update(tt.centroid, tt.dt)

			// Collinear with the segment from -> centroid
			d := r2.Sub(tt.centroid, tt.from)
			m := r2.Sub(got, tt.from)
			assert.InDelta(t, 0, r2.Cross(d, m), 1e-9)

			// Strictly between the endpoints
			frac := r2.Dot(m, d) / r2.Dot(d, d)
			assert.Greater(t, frac, 0.0)
			assert.Less(t, frac, 1.0)
		})
	}
}

func TestUpdateTravelsSpeedTimesDt(t *testing.T) {
	a := newTestAgent(t, 0, 0, 0)

	got := a.Update(r2.Vec{X: 0, Y: 100}, 100*time.Millisecond)

	// 50 units/s for 0.1s straight up
	assert.InDelta(t, 0, got.X, 1e-12)
	assert.InDelta(t, 5, got.Y, 1e-12)
	assert.Equal(t, 100*time.Millisecond, a.LastUpdate())
}

func TestUpdateAtCentroidStaysPut(t *testing.T) {
	a := newTestAgent(t, 7, 7, 0)

	got := a.Update(r2.Vec{X: 7, Y: 7}, time.Second)

	assert.Equal(t, r2.Vec{X: 7, Y: 7}, got)
}

func TestUpdateUsesElapsedSinceLastUpdate(t *testing.T) {
	a := newTestAgent(t, 0, 0, 0)
	target := r2.Vec{X: 1000, Y: 0}

	a.Update(target, 100*time.Millisecond)
	got := a.Update(target, 300*time.Millisecond)

	// 0.1s then 0.2s at 50 units/s
	assert.InDelta(t, 15, got.X, 1e-9)
}

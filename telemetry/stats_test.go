package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarm/components"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistanceStats(t *testing.T) {
	values := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
	mean, std, p10, p50, p90 := ComputeDistanceStats(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	// Population std of 0.1..1.0
	if math.Abs(std-0.2872) > 0.001 {
		t.Errorf("std = %v, want ~0.2872", std)
	}
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
}

func TestComputeDistanceStatsEmpty(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeDistanceStats(nil)

	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestComputeSpread(t *testing.T) {
	snap := components.Snapshot{
		{Position: r2.Vec{X: 3, Y: 4}},   // 5
		{Position: r2.Vec{X: 0, Y: 0}},   // 0
		{Position: r2.Vec{X: -6, Y: 8}},  // 10
		{Position: r2.Vec{X: 0, Y: -20}}, // 20
	}

	s, scratch := ComputeSpread(snap, r2.Vec{}, nil)

	if s.Agents != 4 {
		t.Errorf("agents = %d, want 4", s.Agents)
	}
	if s.DistMean != 8.75 {
		t.Errorf("dist_mean = %v, want 8.75", s.DistMean)
	}
	if s.DistP50 != 7.5 {
		t.Errorf("dist_p50 = %v, want 7.5", s.DistP50)
	}
	if s.DistMax != 20 {
		t.Errorf("dist_max = %v, want 20", s.DistMax)
	}
	if cap(scratch) < 4 {
		t.Errorf("scratch capacity %d, want >= 4", cap(scratch))
	}

	// Reusing the scratch buffer gives the same answer
	again, _ := ComputeSpread(snap, r2.Vec{}, scratch)
	if again != s {
		t.Errorf("spread with reused scratch = %+v, want %+v", again, s)
	}
}

package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/swarm/components"
)

// SpreadStats describes how tightly the swarm gathers around its centroid,
// sampled at the end of a window of frames.
type SpreadStats struct {
	RunID     string  `csv:"run_id"`
	Frame     int     `csv:"frame"`
	Agents    int     `csv:"agents"`
	Outside   int     `csv:"outside"`
	CentroidX float64 `csv:"centroid_x"`
	CentroidY float64 `csv:"centroid_y"`

	// Distance from the centroid
	DistMean float64 `csv:"dist_mean"`
	DistStd  float64 `csv:"dist_std"`
	DistP10  float64 `csv:"dist_p10"`
	DistP50  float64 `csv:"dist_p50"`
	DistP90  float64 `csv:"dist_p90"`
	DistMax  float64 `csv:"dist_max"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistanceStats calculates mean, population std, and percentiles.
// values is sorted in place.
func ComputeDistanceStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)

	slices.Sort(values)
	p10 = Percentile(values, 0.10)
	p50 = Percentile(values, 0.50)
	p90 = Percentile(values, 0.90)
	return mean, std, p10, p50, p90
}

// ComputeSpread measures every entry's distance to centroid. scratch is
// reused when large enough; the grown buffer is returned for the next call.
func ComputeSpread(snap components.Snapshot, centroid r2.Vec, scratch []float64) (SpreadStats, []float64) {
	dists := scratch[:0]
	for _, e := range snap {
		dists = append(dists, r2.Norm(r2.Sub(e.Position, centroid)))
	}

	s := SpreadStats{
		Agents:    len(snap),
		CentroidX: centroid.X,
		CentroidY: centroid.Y,
	}
	s.DistMean, s.DistStd, s.DistP10, s.DistP50, s.DistP90 = ComputeDistanceStats(dists)
	if len(dists) > 0 {
		s.DistMax = dists[len(dists)-1]
	}
	return s, dists
}

// LogValue implements slog.LogValuer for structured logging.
func (s SpreadStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", s.Frame),
		slog.Int("agents", s.Agents),
		slog.Int("outside", s.Outside),
		slog.Float64("centroid_x", s.CentroidX),
		slog.Float64("centroid_y", s.CentroidY),
		slog.Float64("dist_mean", s.DistMean),
		slog.Float64("dist_std", s.DistStd),
		slog.Float64("dist_p10", s.DistP10),
		slog.Float64("dist_p50", s.DistP50),
		slog.Float64("dist_p90", s.DistP90),
		slog.Float64("dist_max", s.DistMax),
	)
}

// LogStats logs the spread stats using the given logger.
func (s SpreadStats) LogStats(logger *slog.Logger) {
	logger.Info("spread", "stats", s)
}

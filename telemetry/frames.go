// Package telemetry records per-frame statistics and tick timing, writes them
// as CSV, and summarizes CPU profiles.
package telemetry

import "log/slog"

// FrameStats describes one presented frame.
type FrameStats struct {
	RunID     string  `csv:"run_id"`
	Strategy  string  `csv:"strategy"`
	Frame     int     `csv:"frame"`
	ElapsedMS int64   `csv:"elapsed_ms"`
	CentroidX float64 `csv:"centroid_x"`
	CentroidY float64 `csv:"centroid_y"`
	Outside   int     `csv:"outside"`   // agents outside the arena bounds
	Updates   int64   `csv:"updates"`   // agent updates since the previous frame
	PresentUS int64   `csv:"present_us"`
}

// LogValue implements slog.LogValuer for structured logging.
func (f FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", f.Frame),
		slog.Int64("elapsed_ms", f.ElapsedMS),
		slog.Float64("centroid_x", f.CentroidX),
		slog.Float64("centroid_y", f.CentroidY),
		slog.Int("outside", f.Outside),
		slog.Int64("updates", f.Updates),
		slog.Int64("present_us", f.PresentUS),
	)
}

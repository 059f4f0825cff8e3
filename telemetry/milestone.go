package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// MilestoneType identifies the type of milestone.
type MilestoneType string

const (
	MilestoneConverged  MilestoneType = "converged"
	MilestoneDispersing MilestoneType = "dispersing"
	MilestoneEscaped    MilestoneType = "escaped"
	MilestoneStable     MilestoneType = "stable"
)

// Milestone is a notable change in swarm shape, detected from SpreadStats.
type Milestone struct {
	Type        MilestoneType
	Frame       int
	Description string
}

// Log logs the milestone.
func (m Milestone) Log(logger *slog.Logger) {
	logger.Info("milestone",
		"type", string(m.Type),
		"frame", m.Frame,
		"description", m.Description,
	)
}

// MilestoneDetector watches successive SpreadStats for convergence,
// dispersal and agents escaping the arena.
type MilestoneDetector struct {
	// Rolling history (circular buffer)
	history     []SpreadStats
	historySize int
	historyIdx  int
	historyFull bool

	convergedRadius float64

	// State tracking
	converged          bool    // p90 distance currently within convergedRadius
	escaped            bool    // outside fraction currently above escapeFraction
	recentSpreadMin    float64 // minimum median distance since the last dispersal
	stableWindowsCount int     // consecutive windows with a steady median distance
}

const (
	escapeFraction   = 0.10
	dispersalFactor  = 1.5
	stableWindows    = 5
	stableCVSquared  = 0.0025 // CV < 5%
	minStableHistory = 4
)

// NewMilestoneDetector creates a detector with the given history size. The
// swarm counts as converged once 90% of agents are within convergedRadius of
// the centroid.
func NewMilestoneDetector(historySize int, convergedRadius float64) *MilestoneDetector {
	if historySize < minStableHistory+1 {
		historySize = minStableHistory + 1
	}
	return &MilestoneDetector{
		history:         make([]SpreadStats, historySize),
		historySize:     historySize,
		convergedRadius: convergedRadius,
	}
}

// Check analyzes the latest stats and returns any triggered milestones.
func (md *MilestoneDetector) Check(stats SpreadStats) []Milestone {
	var milestones []Milestone

	if m := md.checkConverged(stats); m != nil {
		milestones = append(milestones, *m)
	}
	if m := md.checkEscaped(stats); m != nil {
		milestones = append(milestones, *m)
	}
	if md.historyFull || md.historyIdx > 0 {
		if m := md.checkDispersing(stats); m != nil {
			milestones = append(milestones, *m)
		}
		if m := md.checkStable(stats); m != nil {
			milestones = append(milestones, *m)
		}
	}

	md.addToHistory(stats)
	if md.recentSpreadMin == 0 || stats.DistP50 < md.recentSpreadMin {
		md.recentSpreadMin = stats.DistP50
	}

	return milestones
}

func (md *MilestoneDetector) addToHistory(stats SpreadStats) {
	md.history[md.historyIdx] = stats
	md.historyIdx = (md.historyIdx + 1) % md.historySize
	if md.historyIdx == 0 {
		md.historyFull = true
	}
}

// recent returns up to n of the latest history entries, oldest first.
func (md *MilestoneDetector) recent(n int) []SpreadStats {
	size := md.historyIdx
	if md.historyFull {
		size = md.historySize
	}
	n = min(n, size)
	out := make([]SpreadStats, n)
	for i := range out {
		out[i] = md.history[(md.historyIdx-n+i+md.historySize)%md.historySize]
	}
	return out
}

// checkConverged fires when the p90 distance drops inside the radius, once
// per entry.
func (md *MilestoneDetector) checkConverged(stats SpreadStats) *Milestone {
	inside := stats.Agents > 0 && stats.DistP90 <= md.convergedRadius
	if inside == md.converged {
		return nil
	}
	md.converged = inside
	if !inside {
		return nil
	}
	return &Milestone{
		Type:        MilestoneConverged,
		Frame:       stats.Frame,
		Description: fmt.Sprintf("90%% of %d agents within %.1f of the centroid", stats.Agents, md.convergedRadius),
	}
}

// checkEscaped fires when the share of agents outside the arena first
// exceeds escapeFraction, and again only after it has fallen back.
func (md *MilestoneDetector) checkEscaped(stats SpreadStats) *Milestone {
	if stats.Agents == 0 {
		return nil
	}
	frac := float64(stats.Outside) / float64(stats.Agents)
	above := frac > escapeFraction
	if above == md.escaped {
		return nil
	}
	md.escaped = above
	if !above {
		return nil
	}
	return &Milestone{
		Type:        MilestoneEscaped,
		Frame:       stats.Frame,
		Description: fmt.Sprintf("%d of %d agents (%.0f%%) outside the arena", stats.Outside, stats.Agents, frac*100),
	}
}

// checkDispersing fires when the median distance grows past dispersalFactor
// times its recent minimum.
func (md *MilestoneDetector) checkDispersing(stats SpreadStats) *Milestone {
	if md.recentSpreadMin <= 0 {
		return nil
	}
	if stats.DistP50 > md.recentSpreadMin*dispersalFactor {
		oldMin := md.recentSpreadMin
		md.recentSpreadMin = stats.DistP50

		return &Milestone{
			Type:        MilestoneDispersing,
			Frame:       stats.Frame,
			Description: fmt.Sprintf("Median distance grew from %.1f to %.1f", oldMin, stats.DistP50),
		}
	}
	return nil
}

// checkStable fires once the median distance has held steady for
// stableWindows consecutive windows.
func (md *MilestoneDetector) checkStable(stats SpreadStats) *Milestone {
	window := append(md.recent(minStableHistory-1), stats)
	if len(window) < minStableHistory {
		return nil
	}

	medians := make([]float64, len(window))
	for i, h := range window {
		medians[i] = h.DistP50
	}
	mean, variance := stat.PopMeanVariance(medians, nil)

	if mean > 0 && variance/(mean*mean) < stableCVSquared {
		md.stableWindowsCount++
	} else {
		md.stableWindowsCount = 0
	}

	if md.stableWindowsCount == stableWindows { // trigger exactly once per stable run
		return &Milestone{
			Type:        MilestoneStable,
			Frame:       stats.Frame,
			Description: fmt.Sprintf("Median distance steady near %.1f over %d windows", mean, stableWindows),
		}
	}
	return nil
}

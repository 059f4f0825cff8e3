package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/swarm/clock"
	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/telemetry"
)

// Strategy names accepted by StrategyByName.
const (
	StrategySync  = "sync"
	StrategyAsync = "async"
)

// DefaultDrawInterval is the renderer cadence used when Env leaves it unset.
const DefaultDrawInterval = time.Second / 15

// Strategy advances the swarm until the run stops: the input asks to stop,
// the frame ceiling is reached, ctx is cancelled, or presenting fails.
// Stopping is not an error; Run returns nil for the first three.
type Strategy interface {
	Name() string
	Run(ctx context.Context, s *Swarm, env Env) error
}

// StrategyByName returns the strategy registered under name.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case StrategySync:
		return Sync{}, nil
	case StrategyAsync, "":
		return Async{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q: %w", name, ErrInvalidConfiguration)
	}
}

// FrameObserver receives statistics after every presented frame, on the
// renderer task. An error ends the run.
type FrameObserver interface {
	ObserveFrame(stats telemetry.FrameStats) error
}

// FrameObserverFunc adapts a function to FrameObserver.
type FrameObserverFunc func(telemetry.FrameStats) error

// ObserveFrame calls f(stats).
func (f FrameObserverFunc) ObserveFrame(stats telemetry.FrameStats) error { return f(stats) }

// Env holds the collaborators shared by both strategies.
type Env struct {
	Renderer     Renderer
	Input        Input       // nil = never stop on input
	Clock        clock.Clock // nil = real clock
	DrawInterval time.Duration
	MaxFrames    int // 0 = unlimited

	Perf     *telemetry.PerfCollector // nil = private collector
	Observer FrameObserver            // nil = no per-frame stats
	Logger   *slog.Logger
	RunID    string
}

// withDefaults fills unset optional fields and rejects an unusable Env.
func (e Env) withDefaults() (Env, error) {
	if e.Renderer == nil {
		return e, fmt.Errorf("no renderer: %w", ErrInvalidConfiguration)
	}
	if e.DrawInterval < 0 || e.MaxFrames < 0 {
		return e, fmt.Errorf("draw interval %v, max frames %d: %w", e.DrawInterval, e.MaxFrames, ErrInvalidConfiguration)
	}
	if e.Input == nil {
		e.Input = neverStop
	}
	if e.Clock == nil {
		e.Clock = clock.NewReal()
	}
	if e.DrawInterval == 0 {
		e.DrawInterval = DefaultDrawInterval
	}
	if e.Perf == nil {
		e.Perf = telemetry.NewPerfCollector(0)
	}
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	return e, nil
}

// ceilingReached reports whether frame is the last one allowed.
func (e Env) ceilingReached(frame int) bool {
	return e.MaxFrames > 0 && frame >= e.MaxFrames
}

// present snapshots the swarm into buf, hands it to the renderer and counts
// the frame. It returns the reused buffer and the new frame number.
func (e Env) present(s *Swarm, buf components.Snapshot) (components.Snapshot, int, time.Duration, error) {
	e.Perf.StartPhase(telemetry.PhasePresent)
	start := time.Now()
	buf = s.SnapshotInto(buf)
	if err := e.Renderer.Present(buf); err != nil {
		return buf, s.Frames(), 0, fmt.Errorf("present frame %d: %w", s.Frames()+1, err)
	}
	return buf, s.nextFrame(), time.Since(start), nil
}

// observe reports frame statistics. Counting agents outside the arena is
// O(N), so it only happens when someone is listening.
func (e Env) observe(name string, s *Swarm, frame int, presentTime time.Duration) error {
	updates := s.updates.Swap(0)
	if e.Observer == nil {
		return nil
	}
	e.Perf.StartPhase(telemetry.PhaseObserve)
	c := s.centroid.Value()
	stats := telemetry.FrameStats{
		RunID:     e.RunID,
		Strategy:  name,
		Frame:     frame,
		ElapsedMS: e.Clock.Now().Milliseconds(),
		CentroidX: c.X,
		CentroidY: c.Y,
		Outside:   s.Outside(),
		Updates:   updates,
		PresentUS: presentTime.Microseconds(),
	}
	if err := e.Observer.ObserveFrame(stats); err != nil {
		return fmt.Errorf("observe frame %d: %w", frame, err)
	}
	return nil
}

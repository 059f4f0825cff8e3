package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarm/clock"
	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/telemetry"
)

// Options configures a Simulation.
type Options struct {
	Agents    int
	Strategy  string // StrategySync or StrategyAsync
	Seed      int64  // 0 = time-based
	MaxFrames int    // 0 = unlimited

	DrawInterval time.Duration
	Speed        float64
	MinCadence   time.Duration
	MaxCadence   time.Duration
	Bounds       orb.Bound

	Renderer Renderer
	Input    Input
	Clock    clock.Clock // nil = real clock

	Output     *telemetry.OutputManager // nil = no CSV output
	Observer   FrameObserver            // optional, called after Output
	LogStats   bool                     // log perf stats every LogEvery frames
	LogEvery   int // frames between perf/spread samples; 0 = never
	PerfWindow int

	MilestoneHistory int
	ConvergedRadius  float64

	Logger *slog.Logger
}

// OptionsFromConfig returns Options populated from cfg. Collaborators
// (renderer, input, output) are left for the caller.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Agents:       cfg.Swarm.Agents,
		Strategy:     cfg.Schedule.Strategy,
		MaxFrames:    cfg.Schedule.MaxFrames,
		DrawInterval: cfg.Derived.DrawInterval,
		Speed:        cfg.Swarm.Speed,
		MinCadence:   cfg.Derived.MinCadence,
		MaxCadence:   cfg.Derived.MaxCadence,
		Bounds:       cfg.Derived.Bounds,
		LogEvery:     cfg.Telemetry.LogEvery,
		PerfWindow:   cfg.Telemetry.PerfWindow,

		MilestoneHistory: cfg.Telemetry.MilestoneHistory,
		ConvergedRadius:  cfg.Telemetry.ConvergedRadius,
	}
}

// Result summarizes a finished run.
type Result struct {
	RunID    string
	Strategy string
	Frames   int
	Elapsed  time.Duration
	Centroid r2.Vec
	Outside  int
	Spread   telemetry.SpreadStats
	Perf     telemetry.PerfStats
}

// LogValue implements slog.LogValuer for structured logging.
func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", r.RunID),
		slog.String("strategy", r.Strategy),
		slog.Int("frames", r.Frames),
		slog.Duration("elapsed", r.Elapsed),
		slog.Float64("centroid_x", r.Centroid.X),
		slog.Float64("centroid_y", r.Centroid.Y),
		slog.Int("outside", r.Outside),
		slog.Float64("dist_p50", r.Spread.DistP50),
		slog.Float64("dist_p90", r.Spread.DistP90),
	)
}

// Simulation wires a swarm, a strategy and its collaborators for one run.
type Simulation struct {
	opts     Options
	runID    string
	swarm    *Swarm
	strategy Strategy
	perf     *telemetry.PerfCollector
	logger   *slog.Logger
	clock    clock.Clock

	// Spread sampling, renderer task only
	milestones    *telemetry.MilestoneDetector
	spreadSnap    components.Snapshot
	spreadScratch []float64
}

// NewSimulation validates opts and builds the swarm. An agent count below one
// fails with ErrInvalidConfiguration.
func NewSimulation(opts Options) (*Simulation, error) {
	strategy, err := StrategyByName(opts.Strategy)
	if err != nil {
		return nil, err
	}
	if opts.Renderer == nil {
		return nil, fmt.Errorf("no renderer: %w", ErrInvalidConfiguration)
	}
	if opts.DrawInterval < 0 || opts.MaxFrames < 0 {
		return nil, fmt.Errorf("draw interval %v, max frames %d: %w", opts.DrawInterval, opts.MaxFrames, ErrInvalidConfiguration)
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	runID := uuid.NewString()
	logger := opts.Logger.With("run_id", runID)

	swarm, err := NewSwarm(SwarmConfig{
		Agents:     opts.Agents,
		Bounds:     opts.Bounds,
		Speed:      opts.Speed,
		MinCadence: opts.MinCadence,
		MaxCadence: opts.MaxCadence,
	}, opts.Clock, rand.New(rand.NewSource(opts.Seed)))
	if err != nil {
		return nil, err
	}

	return &Simulation{
		opts:     opts,
		runID:    runID,
		swarm:    swarm,
		strategy: strategy,
		perf:     telemetry.NewPerfCollector(opts.PerfWindow),
		logger:   logger,
		clock:    opts.Clock,

		milestones: telemetry.NewMilestoneDetector(opts.MilestoneHistory, opts.ConvergedRadius),
	}, nil
}

// RunID returns the unique identifier attached to this run's logs and output.
func (sim *Simulation) RunID() string { return sim.runID }

// Swarm returns the simulated swarm.
func (sim *Simulation) Swarm() *Swarm { return sim.swarm }

// Strategy returns the selected scheduling strategy.
func (sim *Simulation) Strategy() Strategy { return sim.strategy }

// Perf returns the collector timing renderer ticks. Read it only after Run
// has returned.
func (sim *Simulation) Perf() *telemetry.PerfCollector { return sim.perf }

// Run executes the strategy until a stop condition and reports the outcome.
// Renderer and output failures are returned as errors; they are never
// retried.
func (sim *Simulation) Run(ctx context.Context) (Result, error) {
	sim.logger.Info("starting simulation",
		"agents", sim.swarm.Len(),
		"strategy", sim.strategy.Name(),
		"max_frames", sim.opts.MaxFrames,
		"seed", sim.opts.Seed,
	)

	env := Env{
		Renderer:     sim.opts.Renderer,
		Input:        sim.opts.Input,
		Clock:        sim.clock,
		DrawInterval: sim.opts.DrawInterval,
		MaxFrames:    sim.opts.MaxFrames,
		Perf:         sim.perf,
		Observer:     FrameObserverFunc(sim.observeFrame),
		Logger:       sim.logger,
		RunID:        sim.runID,
	}

	start := sim.clock.Now()
	err := sim.strategy.Run(ctx, sim.swarm, env)
	res := Result{
		RunID:    sim.runID,
		Strategy: sim.strategy.Name(),
		Frames:   sim.swarm.Frames(),
		Elapsed:  sim.clock.Now() - start,
		Centroid: sim.swarm.Centroid().Value(),
		Outside:  sim.swarm.Outside(),
		Spread:   sim.sampleSpread(sim.swarm.Frames()),
		Perf:     sim.perf.Stats(),
	}
	if err != nil {
		sim.logger.Error("simulation failed", "error", err, "result", res)
		return res, err
	}
	sim.logger.Info("simulation finished", "result", res)
	return res, nil
}

// observeFrame fans frame stats out to CSV output, the caller's observer and
// the periodic perf log. It runs on the renderer task.
func (sim *Simulation) observeFrame(stats telemetry.FrameStats) error {
	if err := sim.opts.Output.WriteFrame(stats); err != nil {
		return err
	}
	if sim.opts.Observer != nil {
		if err := sim.opts.Observer.ObserveFrame(stats); err != nil {
			return err
		}
	}

	if sim.opts.LogEvery <= 0 || stats.Frame%sim.opts.LogEvery != 0 {
		return nil
	}
	perfStats := sim.perf.Stats()
	spread := sim.sampleSpread(stats.Frame)
	if sim.opts.LogStats {
		sim.logger.Info("frame", "stats", stats)
		perfStats.LogStats(sim.logger)
		spread.LogStats(sim.logger)
	}
	for _, m := range sim.milestones.Check(spread) {
		m.Log(sim.logger)
	}

	if err := sim.opts.Output.WritePerf(perfStats, stats.Frame); err != nil {
		return err
	}
	return sim.opts.Output.WriteSpread(spread)
}

// sampleSpread measures the swarm around its published centroid. Under the
// async strategy the agents keep moving while the snapshot is taken.
func (sim *Simulation) sampleSpread(frame int) telemetry.SpreadStats {
	sim.spreadSnap = sim.swarm.SnapshotInto(sim.spreadSnap)
	var spread telemetry.SpreadStats
	spread, sim.spreadScratch = telemetry.ComputeSpread(sim.spreadSnap, sim.swarm.Centroid().Value(), sim.spreadScratch)
	spread.RunID = sim.runID
	spread.Frame = frame
	spread.Outside = sim.swarm.Outside()
	return spread
}

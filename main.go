package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/game"
	"github.com/pthm-cable/swarm/renderer"
	"github.com/pthm-cable/swarm/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	agents := flag.Int("n", 0, "Number of agents (0 = use config)")
	useSync := flag.Bool("s", false, "Use the sync strategy (default async)")
	profileMode := flag.Bool("p", false, "Profile mode: record a CPU profile and print the hottest functions")
	maxFrames := flag.Int("frames", 0, "Stop after N frames (0 = unlimited; with -p defaults to the profile ceiling)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	headless := flag.Bool("headless", false, "Run without a window")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output perf stats via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *agents > 0 {
		cfg.Swarm.Agents = *agents
	}
	if *useSync {
		cfg.Schedule.Strategy = game.StrategySync
	}
	framesSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "frames" {
			framesSet = true
		}
	})
	if framesSet {
		cfg.Schedule.MaxFrames = *maxFrames
	}
	cfg.Schedule.MaxFrames = frameCeiling(cfg, *profileMode, framesSet)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, cfg, runOptions{
		Seed:      *seed,
		Headless:  *headless,
		Profile:   *profileMode,
		OutputDir: *outputDir,
		LogStats:  *logStats,
	})
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// runOptions carries the flags that are not part of the config file.
type runOptions struct {
	Seed      int64
	Headless  bool
	Profile   bool
	OutputDir string
	LogStats  bool
}

// frameCeiling applies the profile-mode default ceiling when no explicit
// ceiling was given on the command line.
func frameCeiling(cfg *config.Config, profile, explicit bool) int {
	if !profile || explicit || cfg.Schedule.MaxFrames > 0 {
		return cfg.Schedule.MaxFrames
	}
	if cfg.Schedule.Strategy == game.StrategySync {
		return cfg.Schedule.ProfileFramesSync
	}
	return cfg.Schedule.ProfileFramesAsync
}

// banner is the one-line run summary logged at startup.
func banner(cfg *config.Config) string {
	strategy := cfg.Schedule.Strategy
	if strategy == "" {
		strategy = game.StrategyAsync
	}
	s := fmt.Sprintf("Simulate %d bots, %s", cfg.Swarm.Agents, strategy)
	if cfg.Schedule.MaxFrames > 0 {
		s += fmt.Sprintf(", stop after %d frames", cfg.Schedule.MaxFrames)
	}
	return s
}

func run(ctx context.Context, cfg *config.Config, ro runOptions) error {
	slog.Info(banner(cfg))

	output, err := telemetry.NewOutputManager(ro.OutputDir)
	if err != nil {
		return err
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		return err
	}

	opts := game.OptionsFromConfig(cfg)
	opts.Seed = ro.Seed
	opts.Output = output
	opts.LogStats = ro.LogStats

	if ro.Headless {
		h := renderer.NewHeadless()
		defer h.StopOnDone(ctx)()
		opts.Renderer, opts.Input = h, h
	} else {
		w := renderer.NewWindow(renderer.WindowConfig{
			Width:   cfg.Screen.Width,
			Height:  cfg.Screen.Height,
			Title:   cfg.Screen.Title,
			Arena:   cfg.Derived.Bounds,
			ShowHUD: true,
		})
		defer w.Close()
		opts.Renderer, opts.Input = w, w
	}

	sim, err := game.NewSimulation(opts)
	if err != nil {
		return err
	}

	if !ro.Profile {
		_, err := sim.Run(ctx)
		return err
	}
	return profileRun(ctx, sim, cfg, output)
}

// profilePath places cpu.pprof in the output directory, or in a fresh temp
// directory when output is disabled.
func profilePath(output *telemetry.OutputManager) (string, error) {
	if path := output.Path("cpu.pprof"); path != "" {
		return path, nil
	}
	dir, err := os.MkdirTemp("", "swarm-profile-")
	if err != nil {
		return "", fmt.Errorf("creating profile directory: %w", err)
	}
	return filepath.Join(dir, "cpu.pprof"), nil
}

// profileRun runs the simulation under the CPU profiler and prints the
// hottest functions followed by the per-phase timing table.
func profileRun(ctx context.Context, sim *game.Simulation, cfg *config.Config, output *telemetry.OutputManager) error {
	path, err := profilePath(output)
	if err != nil {
		return err
	}

	stopProfile, err := telemetry.StartCPUProfile(path)
	if err != nil {
		return err
	}
	_, runErr := sim.Run(ctx)
	if err := stopProfile(); err != nil {
		return fmt.Errorf("closing cpu profile: %w", err)
	}
	if runErr != nil {
		return runErr
	}
	slog.Info("cpu profile written", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening cpu profile: %w", err)
	}
	defer f.Close()

	costs, total, err := telemetry.TopFunctions(f, cfg.Telemetry.ProfileTop)
	if err != nil {
		return err
	}
	telemetry.WriteTopFunctions(os.Stdout, costs, total)
	fmt.Fprintln(os.Stdout)
	totals, ticks := sim.Perf().Totals()
	telemetry.WritePhaseTotals(os.Stdout, totals, ticks)
	return nil
}

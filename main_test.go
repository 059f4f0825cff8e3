package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/game"
	"github.com/pthm-cable/swarm/telemetry"
)

func TestFrameCeiling(t *testing.T) {
	tests := []struct {
		name      string
		strategy  string
		maxFrames int
		profile   bool
		explicit  bool
		want      int
	}{
		{"unlimited by default", game.StrategyAsync, 0, false, false, 0},
		{"config ceiling kept", game.StrategyAsync, 7, false, false, 7},
		{"profile async default", game.StrategyAsync, 0, true, false, 10},
		{"profile sync default", game.StrategySync, 0, true, false, 100},
		{"profile explicit zero", game.StrategySync, 0, true, true, 0},
		{"profile explicit ceiling", game.StrategyAsync, 3, true, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load("")
			if err != nil {
				t.Fatalf("loading defaults: %v", err)
			}
			cfg.Schedule.Strategy = tt.strategy
			cfg.Schedule.MaxFrames = tt.maxFrames

			if got := frameCeiling(cfg, tt.profile, tt.explicit); got != tt.want {
				t.Errorf("frameCeiling() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBanner(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	if got, want := banner(cfg), "Simulate 20000 bots, async"; got != want {
		t.Errorf("banner() = %q, want %q", got, want)
	}

	cfg.Schedule.Strategy = game.StrategySync
	cfg.Schedule.MaxFrames = 100
	if got, want := banner(cfg), "Simulate 20000 bots, sync, stop after 100 frames"; got != want {
		t.Errorf("banner() = %q, want %q", got, want)
	}
}

func TestProfilePath(t *testing.T) {
	dir := t.TempDir()
	output, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatalf("creating output: %v", err)
	}
	defer output.Close()

	got, err := profilePath(output)
	if err != nil {
		t.Fatalf("profilePath: %v", err)
	}
	if want := filepath.Join(dir, "cpu.pprof"); got != want {
		t.Errorf("profilePath() = %q, want %q", got, want)
	}
}

func TestProfilePathWithoutOutput(t *testing.T) {
	got, err := profilePath(nil)
	if err != nil {
		t.Fatalf("profilePath: %v", err)
	}
	defer os.RemoveAll(filepath.Dir(got))

	if filepath.Base(got) != "cpu.pprof" {
		t.Errorf("profilePath() = %q, want a cpu.pprof file", got)
	}
	if info, err := os.Stat(filepath.Dir(got)); err != nil || !info.IsDir() {
		t.Errorf("profile directory %q not created: %v", filepath.Dir(got), err)
	}
}

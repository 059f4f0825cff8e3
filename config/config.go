// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Arena     ArenaConfig     `yaml:"arena"`
	Swarm     SwarmConfig     `yaml:"swarm"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// ArenaConfig holds the bounds used for initial placement.
// Agents are never clamped to the arena.
type ArenaConfig struct {
	Width  int `yaml:"width"`  // 0 = screen width
	Height int `yaml:"height"` // 0 = screen height
}

// SwarmConfig holds agent creation parameters.
type SwarmConfig struct {
	Agents   int     `yaml:"agents"`
	Speed    float64 `yaml:"speed"`      // units per second
	MinNapMS int     `yaml:"min_nap_ms"` // inclusive lower bound of per-agent cadence
	MaxNapMS int     `yaml:"max_nap_ms"` // exclusive upper bound of per-agent cadence
}

// ScheduleConfig holds scheduler parameters.
type ScheduleConfig struct {
	Strategy           string  `yaml:"strategy"`
	DrawHz             float64 `yaml:"draw_hz"`
	MaxFrames          int     `yaml:"max_frames"`
	ProfileFramesAsync int     `yaml:"profile_frames_async"`
	ProfileFramesSync  int     `yaml:"profile_frames_sync"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"`
	LogEvery   int `yaml:"log_every"`
	ProfileTop int `yaml:"profile_top"`

	// Swarm shape milestones, checked every LogEvery frames
	MilestoneHistory int     `yaml:"milestone_history"`
	ConvergedRadius  float64 `yaml:"converged_radius"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DrawInterval time.Duration
	MinCadence   time.Duration
	MaxCadence   time.Duration
	Bounds       orb.Bound // arena, anchored at the origin
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Screen.Width <= 0 || c.Screen.Height <= 0:
		return fmt.Errorf("config: screen size %dx%d must be positive", c.Screen.Width, c.Screen.Height)
	case c.Arena.Width < 0 || c.Arena.Height < 0:
		return fmt.Errorf("config: arena size %dx%d must not be negative", c.Arena.Width, c.Arena.Height)
	case c.Swarm.MinNapMS <= 0:
		return fmt.Errorf("config: swarm.min_nap_ms %d must be positive", c.Swarm.MinNapMS)
	case c.Swarm.MaxNapMS < c.Swarm.MinNapMS:
		return fmt.Errorf("config: swarm.max_nap_ms %d below min_nap_ms %d", c.Swarm.MaxNapMS, c.Swarm.MinNapMS)
	case c.Schedule.DrawHz <= 0:
		return fmt.Errorf("config: schedule.draw_hz %v must be positive", c.Schedule.DrawHz)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DrawInterval = time.Duration(float64(time.Second) / c.Schedule.DrawHz)
	c.Derived.MinCadence = time.Duration(c.Swarm.MinNapMS) * time.Millisecond
	c.Derived.MaxCadence = time.Duration(c.Swarm.MaxNapMS) * time.Millisecond

	// Arena defaults to screen size if not specified
	w := c.Arena.Width
	if w == 0 {
		w = c.Screen.Width
	}
	h := c.Arena.Height
	if h == 0 {
		h = c.Screen.Height
	}
	c.Derived.Bounds = orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{float64(w), float64(h)}}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

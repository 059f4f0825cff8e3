package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 20000, cfg.Swarm.Agents)
	assert.Equal(t, "async", cfg.Schedule.Strategy)
	assert.Equal(t, 50.0, cfg.Swarm.Speed)
	assert.Equal(t, time.Second/15, cfg.Derived.DrawInterval)
	assert.Equal(t, 20*time.Millisecond, cfg.Derived.MinCadence)
	assert.Equal(t, 200*time.Millisecond, cfg.Derived.MaxCadence)
	assert.Equal(t, orb.Point{1000, 750}, cfg.Derived.Bounds.Max)
	assert.Equal(t, 30, cfg.Telemetry.ProfileTop)
	assert.Equal(t, 5.0, cfg.Telemetry.ConvergedRadius)
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yaml := "swarm:\n  agents: 42\narena:\n  width: 300\n  height: 200\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Swarm.Agents)
	assert.Equal(t, 50.0, cfg.Swarm.Speed, "unset fields keep defaults")
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{300, 200}}, cfg.Derived.Bounds)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero draw rate", "schedule:\n  draw_hz: 0\n"},
		{"zero nap", "swarm:\n  min_nap_ms: 0\n"},
		{"inverted nap range", "swarm:\n  min_nap_ms: 50\n  max_nap_ms: 10\n"},
		{"bad yaml", "swarm: [\n"},
		{"negative arena width", "arena:\n  width: -10\n"},
		{"negative arena height", "arena:\n  height: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Swarm.Agents = 7

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.Swarm.Agents)
	assert.Equal(t, cfg.Derived, reloaded.Derived)
}

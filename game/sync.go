package game

import (
	"context"
	"time"

	"github.com/pthm-cable/swarm/clock"
	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/telemetry"
)

// Sync is the cooperative strategy: one goroutine runs every tick as
//
//	poll input -> present -> update all agents -> recompute centroid -> sleep
//
// Each frame shows the positions left by the previous tick, every agent in a
// tick steers toward the same centroid, and the recomputation strictly
// follows the updates. With a deterministic clock the run is reproducible.
type Sync struct{}

// Name returns StrategySync.
func (Sync) Name() string { return StrategySync }

// Run drives ticks until a stop condition is met.
func (st Sync) Run(ctx context.Context, s *Swarm, env Env) error {
	env, err := env.withDefaults()
	if err != nil {
		return err
	}
	clk := env.Clock
	perf := env.Perf

	var buf components.Snapshot
	for ctx.Err() == nil {
		now := clk.Now()
		deadline := now + env.DrawInterval

		perf.StartTick()
		perf.StartPhase(telemetry.PhaseInput)
		if env.Input.PollStopRequested() {
			perf.EndTick()
			env.Logger.Info("stop requested", "strategy", st.Name(), "frames", s.Frames())
			return nil
		}

		var frame int
		var presentTime time.Duration
		buf, frame, presentTime, err = env.present(s, buf)
		if err != nil {
			perf.EndTick()
			return err
		}
		last := env.ceilingReached(frame)

		if !last {
			perf.StartPhase(telemetry.PhaseUpdate)
			st.step(s, clk.Now())
			perf.StartPhase(telemetry.PhaseCentroid)
			s.centroid.Recompute(s.agents)
		}

		err = env.observe(st.Name(), s, frame, presentTime)
		perf.EndTick()
		if err != nil {
			return err
		}
		if last {
			env.Logger.Info("frame ceiling reached", "strategy", st.Name(), "frames", frame)
			return nil
		}

		if clock.SleepUntil(ctx, clk, deadline) != nil {
			break
		}
	}
	return nil
}

// step updates every agent, in order, toward the centroid published at the
// start of the step.
func (Sync) step(s *Swarm, now time.Duration) {
	c := s.centroid.Value()
	for _, a := range s.agents {
		a.Update(c, now)
	}
	s.updates.Add(int64(len(s.agents)))
}

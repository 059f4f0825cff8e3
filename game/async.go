package game

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/telemetry"
)

// Async is the concurrent strategy: every agent runs its own goroutine that
// updates and then sleeps for the agent's cadence, and a renderer task
// presents frames and republishes the centroid once per draw interval.
//
// There is no barrier between tasks. Agents read whichever centroid was last
// published, so their target may be up to one draw interval stale, and a
// snapshot may mix positions from different moments. Both reads are atomic,
// so no single value is ever torn.
//
// The renderer task runs on the calling goroutine because window toolkits
// must be driven from the thread that created the window. Run returns only
// after every agent goroutine has exited.
type Async struct{}

// Name returns StrategyAsync.
func (Async) Name() string { return StrategyAsync }

// Run starts the agent tasks, runs the renderer task until a stop condition
// is met, then cancels and joins the agents.
func (st Async) Run(ctx context.Context, s *Swarm, env Env) error {
	env, err := env.withDefaults()
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, agentCtx := errgroup.WithContext(runCtx)
	for _, a := range s.agents {
		g.Go(func() error {
			st.runAgent(agentCtx, s, a, env)
			return nil
		})
	}
	env.Logger.Debug("agent tasks started", "count", len(s.agents))

	renderErr := st.runRenderer(agentCtx, s, env)

	// Flip the keep-running flag and wait for every agent to notice
	cancel()
	waitErr := g.Wait()
	env.Logger.Debug("agent tasks joined", "count", len(s.agents))

	if renderErr != nil {
		return renderErr
	}
	return waitErr
}

// runAgent loops update-then-sleep until ctx is done.
func (Async) runAgent(ctx context.Context, s *Swarm, a *systems.Agent, env Env) {
	for ctx.Err() == nil {
		a.Update(s.centroid.Value(), env.Clock.Now())
		s.updates.Add(1)
		if env.Clock.Sleep(ctx, a.Cadence()) != nil {
			return
		}
	}
}

// runRenderer is the single task that polls input, presents frames and
// publishes the centroid. It returns nil on any stop condition.
func (st Async) runRenderer(ctx context.Context, s *Swarm, env Env) error {
	perf := env.Perf
	var buf components.Snapshot
	for ctx.Err() == nil {
		perf.StartTick()
		perf.StartPhase(telemetry.PhaseInput)
		if env.Input.PollStopRequested() {
			perf.EndTick()
			env.Logger.Info("stop requested", "strategy", st.Name(), "frames", s.Frames())
			return nil
		}

		var (
			frame       int
			presentTime time.Duration
			err         error
		)
		buf, frame, presentTime, err = env.present(s, buf)
		if err != nil {
			perf.EndTick()
			return err
		}

		perf.StartPhase(telemetry.PhaseCentroid)
		s.centroid.Recompute(s.agents)

		err = env.observe(st.Name(), s, frame, presentTime)
		perf.EndTick()
		if err != nil {
			return err
		}
		if env.ceilingReached(frame) {
			env.Logger.Info("frame ceiling reached", "strategy", st.Name(), "frames", frame)
			return nil
		}

		if env.Clock.Sleep(ctx, env.DrawInterval) != nil {
			return nil
		}
	}
	return nil
}

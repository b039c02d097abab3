package bsp

import "context"

// ExecutorHooks are called around every superstep. Unset hooks are no-ops.
//
// The PageRank ranker uses PreStep to reset the dead-end residual aggregator
// of the coming step and PostStepKeepRunning to stop once the sum of absolute
// score differences drops below its threshold.
type ExecutorHooks[VT, ET any] struct {
	// PreStep runs before each superstep.
	PreStep func(ctx context.Context, g *Graph[VT, ET]) error

	// PostStep runs after each superstep with the number of page vertices
	// that were active in it.
	PostStep func(ctx context.Context, g *Graph[VT, ET], activeInStep int) error

	// PostStepKeepRunning runs last and returns false to end the run.
	PostStepKeepRunning func(ctx context.Context, g *Graph[VT, ET], activeInStep int) (bool, error)
}

func (h *ExecutorHooks[VT, ET]) fillDefaults() {
	if h.PreStep == nil {
		h.PreStep = func(context.Context, *Graph[VT, ET]) error { return nil }
	}
	if h.PostStep == nil {
		h.PostStep = func(context.Context, *Graph[VT, ET], int) error { return nil }
	}
	if h.PostStepKeepRunning == nil {
		h.PostStepKeepRunning = func(context.Context, *Graph[VT, ET], int) (bool, error) { return true, nil }
	}
}

// Executor drives a Graph through supersteps. Creating one rewinds the
// graph to superstep 0, so a graph reloaded with a new neighborhood can be
// reused by a fresh executor.
type Executor[VT, ET any] struct {
	g     *Graph[VT, ET]
	hooks ExecutorHooks[VT, ET]
}

// ExecutorFactory creates an Executor. Rankers accept one so tests can wrap
// the executor.
type ExecutorFactory[VT, ET any] func(*Graph[VT, ET], ExecutorHooks[VT, ET]) *Executor[VT, ET]

func NewExecutor[VT, ET any](g *Graph[VT, ET], hooks ExecutorHooks[VT, ET]) *Executor[VT, ET] {
	hooks.fillDefaults()
	g.superstep = 0
	return &Executor[VT, ET]{g: g, hooks: hooks}
}

// RunToCompletion runs supersteps until a hook stops the run, a step fails
// or ctx is done.
func (ex *Executor[VT, ET]) RunToCompletion(ctx context.Context) error {
	return ex.run(ctx, -1)
}

// RunSteps is RunToCompletion capped at numSteps supersteps.
func (ex *Executor[VT, ET]) RunSteps(ctx context.Context, numSteps int) error {
	return ex.run(ctx, numSteps)
}

// run executes up to maxSteps supersteps; a negative maxSteps means no cap.
func (ex *Executor[VT, ET]) run(ctx context.Context, maxSteps int) error {
	for done := 0; maxSteps < 0 || done < maxSteps; done++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		// The graph stays on the last executed superstep when the run stops.
		if keepRunning, err := ex.superstep(ctx); err != nil || !keepRunning {
			return err
		}
		ex.g.superstep++
	}
	return nil
}

func (ex *Executor[VT, ET]) superstep(ctx context.Context) (bool, error) {
	if err := ex.hooks.PreStep(ctx, ex.g); err != nil {
		return false, err
	}
	active, err := ex.g.step()
	if err != nil {
		return false, err
	}
	if err = ex.hooks.PostStep(ctx, ex.g, active); err != nil {
		return false, err
	}
	return ex.hooks.PostStepKeepRunning(ctx, ex.g, active)
}

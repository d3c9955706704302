package core

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Core runs a program on an akita engine, executing one run step per cycle.
// It lets a program be timed against a clock frequency and observed by akita
// tooling such as the monitor.
type Core struct {
	*sim.TickingComponent

	mode     Mode
	policy   LoopPolicy
	tracer   Tracer
	maxSteps int

	run        *Run
	done       bool
	err        error
	finishTime sim.VTimeInSec
}

// MapProgram sets the program that the core needs to run and schedules the
// first tick. Mapping a new program discards the result of the previous one.
func (c *Core) MapProgram(prog Program) {
	opts := []RunOption{
		WithMode(c.mode),
		WithLoopPolicy(c.policy),
		WithMaxSteps(c.maxSteps),
	}
	if c.tracer != nil {
		opts = append(opts, WithTracer(c.tracer))
	}

	c.run = NewRun(prog, opts...)
	c.done = false
	c.err = nil
	c.finishTime = 0

	Trace("CoreMapProgram",
		"Core", c.Name(),
		"Mode", c.mode,
		"Instructions", len(prog),
	)

	c.TickNow()
}

// Tick runs the program for one cycle.
func (c *Core) Tick() (madeProgress bool) {
	if c.run == nil || c.done {
		return false
	}

	status, err := c.run.Step()
	if err != nil {
		c.finish(err)
		return false
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosCoreStep,
		Item:   c.run.Result(),
	})

	if status.Terminal() {
		c.finish(nil)
	}

	return true
}

func (c *Core) finish(err error) {
	c.done = true
	c.err = err
	c.finishTime = c.Engine.CurrentTime()

	res := c.run.Result()
	Trace("CoreFinished",
		"Core", c.Name(),
		"Time", float64(c.finishTime*1e9),
		"Status", res.Status,
		"Acc", res.Accumulator,
		"Steps", res.Steps,
		"Err", err,
	)

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosCoreFinish,
		Item:   res,
		Detail: err,
	})
}

// Done reports whether the mapped program reached a terminal status or
// failed.
func (c *Core) Done() bool {
	return c.done
}

// Result returns the outcome of the mapped program. The error is the one
// that aborted the run, if any.
func (c *Core) Result() (Result, error) {
	if c.run == nil {
		return Result{}, nil
	}
	return c.run.Result(), c.err
}

// FinishTime returns the simulated time at which the run finished.
func (c *Core) FinishTime() sim.VTimeInSec {
	return c.finishTime
}

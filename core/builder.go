package core

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Builder can create new cores.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	mode     Mode
	policy   LoopPolicy
	tracer   Tracer
	maxSteps int
}

// NewBuilder returns a builder for 1 GHz hang detection cores.
func NewBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
		mode: ModeHangDetect,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithMode sets the run mode of programs mapped to the core.
func (b Builder) WithMode(mode Mode) Builder {
	b.mode = mode
	return b
}

// WithLoopPolicy sets the loop policy used in ModeComplete.
func (b Builder) WithLoopPolicy(policy LoopPolicy) Builder {
	b.policy = policy
	return b
}

// WithTracer sets a tracer that observes every run of the core.
func (b Builder) WithTracer(t Tracer) Builder {
	b.tracer = t
	return b
}

// WithMaxSteps bounds every run of the core.
func (b Builder) WithMaxSteps(n int) Builder {
	if n < 0 {
		panic("max steps cannot be negative")
	}
	b.maxSteps = n
	return b
}

// Build creates a core.
func (b Builder) Build(name string) *Core {
	c := &Core{
		mode:     b.mode,
		policy:   b.policy,
		tracer:   b.tracer,
		maxSteps: b.maxSteps,
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}

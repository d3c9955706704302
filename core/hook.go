package core

import (
	"github.com/sarchlab/akita/v4/sim"
)

// HookPosCoreStep marks when a core has taken one run step. The hook item is
// the Result of the run after the step.
var HookPosCoreStep = &sim.HookPos{Name: "Core Step"}

// HookPosCoreFinish marks when the run of a core halted or failed. The hook
// item is the final Result and the detail is the error, if any.
var HookPosCoreFinish = &sim.HookPos{Name: "Core Finish"}

// StepCounter is a hook that counts the steps and finishes of the cores it
// is attached to.
type StepCounter struct {
	Steps    int
	Finishes int
}

// Func implements sim.Hook.
func (h *StepCounter) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosCoreStep:
		h.Steps++
	case HookPosCoreFinish:
		h.Finishes++
	}
}

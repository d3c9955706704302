package core

// Tracer observes a run. Calls happen synchronously from Run.Step.
type Tracer interface {
	// OnStep is called after the instruction at index executed and the run
	// moved from one state to the next.
	OnStep(index int, inst Instruction, from, to State)

	// OnFallback is called when a completion run drops the step of the
	// instruction at index because it would re-enter a loop, and moves one
	// instruction forward instead.
	OnFallback(index int, inst Instruction, from, to State)

	// OnHalt is called once, when the run reaches a terminal status.
	OnHalt(status Status, final State)
}

type nopTracer struct{}

func (nopTracer) OnStep(int, Instruction, State, State)     {}
func (nopTracer) OnFallback(int, Instruction, State, State) {}
func (nopTracer) OnHalt(Status, State)                      {}

// LogTracer writes every event as a slog record at LevelTrace.
type LogTracer struct {
	Name string
}

func (t LogTracer) OnStep(index int, inst Instruction, from, to State) {
	Trace("Step",
		"Run", t.Name,
		"Index", index,
		"Inst", inst.String(),
		"FromIP", from.IP,
		"ToIP", to.IP,
		"Acc", to.Acc,
	)
}

func (t LogTracer) OnFallback(index int, inst Instruction, from, to State) {
	Trace("Fallback",
		"Run", t.Name,
		"Index", index,
		"Inst", inst.String(),
		"FromIP", from.IP,
		"ToIP", to.IP,
		"Acc", to.Acc,
	)
}

func (t LogTracer) OnHalt(status Status, final State) {
	Trace("Halt",
		"Run", t.Name,
		"Status", status.String(),
		"IP", final.IP,
		"Acc", final.Acc,
	)
}

// MultiTracer fans events out to several tracers.
type MultiTracer []Tracer

func (m MultiTracer) OnStep(index int, inst Instruction, from, to State) {
	for _, t := range m {
		t.OnStep(index, inst, from, to)
	}
}

func (m MultiTracer) OnFallback(index int, inst Instruction, from, to State) {
	for _, t := range m {
		t.OnFallback(index, inst, from, to)
	}
}

func (m MultiTracer) OnHalt(status Status, final State) {
	for _, t := range m {
		t.OnHalt(status, final)
	}
}

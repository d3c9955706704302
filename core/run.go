package core

import (
	"errors"
	"fmt"
)

var (
	// ErrPointerOutOfRange means the run would have indexed the program with
	// an instruction pointer outside of it.
	ErrPointerOutOfRange = errors.New("instruction pointer out of range")

	// ErrNoRepeat means a hang detection run fell off the end of the program
	// without revisiting any instruction.
	ErrNoRepeat = errors.New("program terminated without repeating an instruction")

	// ErrStepLimit means the run executed more steps than WithMaxSteps allows.
	ErrStepLimit = errors.New("step limit exceeded")
)

// Mode selects which terminal conditions a run has.
type Mode int

const (
	// ModeHangDetect stops the first time an instruction is about to run a
	// second time.
	ModeHangDetect Mode = iota
	// ModeComplete stops once the instruction pointer moves past the last
	// instruction.
	ModeComplete
)

func (m Mode) String() string {
	switch m {
	case ModeHangDetect:
		return "hang-detect"
	case ModeComplete:
		return "complete"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// LoopPolicy decides what a completion run does when the next step would
// re-enter an instruction that already ran.
type LoopPolicy int

const (
	// FallbackStep drops the pending step and moves the pointer forward by
	// one instead, leaving the accumulator alone. The run keeps going.
	FallbackStep LoopPolicy = iota
	// ReportLoop stops the run with StatusLooping.
	ReportLoop
)

func (p LoopPolicy) String() string {
	switch p {
	case FallbackStep:
		return "fallback"
	case ReportLoop:
		return "report"
	}
	return fmt.Sprintf("LoopPolicy(%d)", int(p))
}

// Status is the state of a run's state machine.
type Status int

const (
	StatusRunning Status = iota
	StatusHaltedOnRepeat
	StatusCompleted
	StatusLooping
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusHaltedOnRepeat:
		return "HALTED_ON_REPEAT"
	case StatusCompleted:
		return "COMPLETED"
	case StatusLooping:
		return "LOOPING"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Terminal reports whether no further step can be taken.
func (s Status) Terminal() bool {
	return s != StatusRunning
}

// Result summarizes a finished run.
type Result struct {
	Status      Status
	State       State
	Accumulator int
	Steps       int // instructions executed
	Fallbacks   int // steps replaced by a +1 fallback
}

// RunOption configures a Run.
type RunOption func(*Run)

// WithMode sets the run mode. The default is ModeHangDetect.
func WithMode(mode Mode) RunOption {
	return func(r *Run) { r.mode = mode }
}

// WithLoopPolicy sets the loop policy of completion runs. The default is
// FallbackStep.
func WithLoopPolicy(policy LoopPolicy) RunOption {
	return func(r *Run) { r.policy = policy }
}

// WithTracer attaches a tracer that observes every step.
func WithTracer(t Tracer) RunOption {
	return func(r *Run) { r.tracer = t }
}

// WithMaxSteps bounds the number of executed instructions. Zero means no
// bound.
func WithMaxSteps(n int) RunOption {
	return func(r *Run) { r.maxSteps = n }
}

// Run is one execution of a program. It owns the executed flags, so a
// Program can be run any number of times, even concurrently by separate
// Runs. A Run itself is not safe for concurrent use.
type Run struct {
	prog     Program
	mode     Mode
	policy   LoopPolicy
	tracer   Tracer
	maxSteps int

	state     State
	executed  []bool
	status    Status
	steps     int
	fallbacks int
}

// NewRun prepares a run at the initial state (0, 0) with no instruction
// executed.
func NewRun(prog Program, opts ...RunOption) *Run {
	r := &Run{
		prog:     prog,
		executed: make([]bool, len(prog)),
		tracer:   nopTracer{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// State returns the current machine state.
func (r *Run) State() State {
	return r.state
}

// Status returns the current status.
func (r *Run) Status() Status {
	return r.status
}

// Executed reports whether the instruction at index has run in this run.
func (r *Run) Executed(index int) bool {
	return index >= 0 && index < len(r.executed) && r.executed[index]
}

// Result returns the summary of the run so far.
func (r *Run) Result() Result {
	return Result{
		Status:      r.status,
		State:       r.state,
		Accumulator: r.state.Acc,
		Steps:       r.steps,
		Fallbacks:   r.fallbacks,
	}
}

func (r *Run) inRange(ip int) bool {
	return ip >= 0 && ip < len(r.prog)
}

func (r *Run) halt(status Status) Status {
	r.status = status
	r.tracer.OnHalt(status, r.state)
	Trace("RunHalted",
		"Mode", r.mode,
		"Status", status,
		"IP", r.state.IP,
		"Acc", r.state.Acc,
		"Steps", r.steps,
		"Fallbacks", r.fallbacks,
	)
	return status
}

// Step advances the run by one transition and returns the new status. Steps
// on a terminated run are no-ops. An error aborts the run; the state is left
// as it was before the failing step.
func (r *Run) Step() (Status, error) {
	if r.status.Terminal() {
		return r.status, nil
	}

	switch r.mode {
	case ModeHangDetect:
		return r.stepHangDetect()
	case ModeComplete:
		return r.stepComplete()
	}

	return r.status, fmt.Errorf("unknown run mode %v", r.mode)
}

func (r *Run) checkLimit() error {
	if r.maxSteps > 0 && r.steps >= r.maxSteps {
		return fmt.Errorf("%w: %d steps at %v", ErrStepLimit, r.steps, r.state)
	}
	return nil
}

func (r *Run) stepHangDetect() (Status, error) {
	ip := r.state.IP
	if ip == len(r.prog) {
		return r.status, fmt.Errorf("%w: acc=%d", ErrNoRepeat, r.state.Acc)
	}
	if !r.inRange(ip) {
		return r.status, fmt.Errorf("%w: ip %d, program length %d",
			ErrPointerOutOfRange, ip, len(r.prog))
	}

	if r.executed[ip] {
		return r.halt(StatusHaltedOnRepeat), nil
	}

	if err := r.checkLimit(); err != nil {
		return r.status, err
	}

	inst := r.prog[ip]
	next, err := Execute(r.state, inst)
	if err != nil {
		return r.status, err
	}

	r.executed[ip] = true
	r.steps++
	r.tracer.OnStep(ip, inst, r.state, next)
	r.state = next

	return r.status, nil
}

func (r *Run) stepComplete() (Status, error) {
	ip := r.state.IP
	if !r.inRange(ip) {
		return r.halt(StatusCompleted), nil
	}

	if err := r.checkLimit(); err != nil {
		return r.status, err
	}

	inst := r.prog[ip]
	next, err := Execute(r.state, inst)
	if err != nil {
		return r.status, err
	}

	r.executed[ip] = true
	r.steps++

	// A jump before the first instruction leaves the program as well.
	if !r.inRange(next.IP) {
		r.tracer.OnStep(ip, inst, r.state, next)
		r.state = next
		return r.halt(StatusCompleted), nil
	}

	if !r.executed[next.IP] {
		r.tracer.OnStep(ip, inst, r.state, next)
		r.state = next
		return r.status, nil
	}

	if r.policy == ReportLoop {
		r.tracer.OnStep(ip, inst, r.state, next)
		r.state = next
		return r.halt(StatusLooping), nil
	}

	fallback := r.state.ShiftIP(1)
	r.fallbacks++
	r.tracer.OnFallback(ip, inst, r.state, fallback)
	r.state = fallback

	return r.status, nil
}

// Execute steps the run until it reaches a terminal status or fails.
func (r *Run) Execute() (Result, error) {
	for !r.status.Terminal() {
		if _, err := r.Step(); err != nil {
			return r.Result(), err
		}
	}

	return r.Result(), nil
}

// DetectHang runs prog until an instruction is about to execute a second
// time and returns the accumulator at that point.
func DetectHang(prog Program, opts ...RunOption) (Result, error) {
	opts = append(opts[:len(opts):len(opts)], WithMode(ModeHangDetect))
	return NewRun(prog, opts...).Execute()
}

// Complete runs prog until the instruction pointer passes the last
// instruction, or until the loop policy stops it.
func Complete(prog Program, opts ...RunOption) (Result, error) {
	opts = append(opts[:len(opts):len(opts)], WithMode(ModeComplete))
	return NewRun(prog, opts...).Execute()
}

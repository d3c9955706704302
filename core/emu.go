package core

import (
	"errors"
	"fmt"
)

// ErrUnsupportedOperation is returned when a run reaches an instruction whose
// opcode the machine does not implement. It aborts the run.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// State is the machine state. It is a value: every transition returns a new
// State and leaves its input untouched.
type State struct {
	IP  int // index of the next instruction
	Acc int
}

// ShiftIP returns the state with the instruction pointer moved by n.
func (s State) ShiftIP(n int) State {
	s.IP += n
	return s
}

// AddAcc returns the state with n added to the accumulator.
func (s State) AddAcc(n int) State {
	s.Acc += n
	return s
}

func (s State) String() string {
	return fmt.Sprintf("ip=%d acc=%d", s.IP, s.Acc)
}

type instEmulator struct {
}

var instFuncs = map[Opcode]func(inst Instruction, state State) State{
	OpAcc: func(inst Instruction, state State) State {
		return state.ShiftIP(1).AddAcc(inst.Arg)
	},
	OpJmp: func(inst Instruction, state State) State {
		return state.ShiftIP(inst.Arg)
	},
	// The argument of nop does not affect control flow.
	OpNop: func(_ Instruction, state State) State {
		return state.ShiftIP(1)
	},
}

// RunInst computes the state that follows executing inst in state.
func (i instEmulator) RunInst(inst Instruction, state State) (State, error) {
	instFunc, ok := instFuncs[inst.Op]
	if !ok {
		return state, fmt.Errorf("%w %q at ip %d", ErrUnsupportedOperation, inst.Op, state.IP)
	}

	return instFunc(inst, state), nil
}

// Execute is the pure state transition of the machine. It does not record
// that the instruction ran; that is the job of the run loop.
func Execute(state State, inst Instruction) (State, error) {
	return instEmulator{}.RunInst(inst, state)
}

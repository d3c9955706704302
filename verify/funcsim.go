package verify

import (
	"fmt"

	"github.com/sarchlab/opmachine/core"
)

// FunctionalSimulator interprets a program with hang detection semantics. It
// shares no code with core.Run beyond the program types, so the two can be
// checked against each other.
type FunctionalSimulator struct {
	prog core.Program
	seen map[int]bool

	ip    int
	acc   int
	steps int
}

// NewFunctionalSimulator creates a new functional simulator
func NewFunctionalSimulator(prog core.Program) *FunctionalSimulator {
	return &FunctionalSimulator{
		prog: prog,
		seen: make(map[int]bool, len(prog)),
	}
}

// Run executes until an instruction is about to run a second time, for at
// most maxSteps instructions. Zero means no bound.
// Returns an error if the program leaves its bounds or cannot be executed.
func (fs *FunctionalSimulator) Run(maxSteps int) error {
	for {
		if fs.ip < 0 || fs.ip >= len(fs.prog) {
			return fmt.Errorf("funcsim: ip %d outside program of %d instructions after %d steps",
				fs.ip, len(fs.prog), fs.steps)
		}
		if fs.seen[fs.ip] {
			return nil
		}
		if maxSteps > 0 && fs.steps >= maxSteps {
			return fmt.Errorf("funcsim: no repeat within %d steps", maxSteps)
		}

		fs.seen[fs.ip] = true
		fs.steps++

		inst := fs.prog[fs.ip]
		switch inst.Op {
		case core.OpAcc:
			fs.acc += inst.Arg
			fs.ip++
		case core.OpJmp:
			fs.ip += inst.Arg
		case core.OpNop:
			fs.ip++
		default:
			return fmt.Errorf("funcsim: cannot execute %v at %d", inst, fs.ip)
		}
	}
}

// GetAccumulator returns the accumulator value
func (fs *FunctionalSimulator) GetAccumulator() int {
	return fs.acc
}

// GetIP returns the instruction pointer
func (fs *FunctionalSimulator) GetIP() int {
	return fs.ip
}

// GetSteps returns the number of executed instructions
func (fs *FunctionalSimulator) GetSteps() int {
	return fs.steps
}

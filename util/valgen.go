// Some helpers using closures to generate values and programs for tests
package valgen

import (
	"github.com/sarchlab/opmachine/core"
)

func MakeConstGen(constant int) func() int {
	return func() int {
		return constant
	}
}

func MakeIncreasingGen(start int) func() int {
	current := start
	return func() int {
		current++
		return current
	}
}

// MakeCyclingGen returns the values in order, starting over after the last.
func MakeCyclingGen(values ...int) func() int {
	if len(values) == 0 {
		panic("MakeCyclingGen needs at least one value")
	}
	next := 0
	return func() int {
		v := values[next]
		next = (next + 1) % len(values)
		return v
	}
}

// Loop builds n acc instructions with arguments drawn from gen, followed by
// a jmp back to the first one. A hang detection run over it halts with the
// sum of the n arguments.
func Loop(n int, gen func() int) core.Program {
	prog := make(core.Program, 0, n+1)
	for i := 0; i < n; i++ {
		prog = append(prog, core.Instruction{Op: core.OpAcc, Arg: gen()})
	}
	return append(prog, core.Instruction{Op: core.OpJmp, Arg: -n})
}

// Straight builds n acc instructions with arguments drawn from gen. A
// completion run over it ends one past the last instruction.
func Straight(n int, gen func() int) core.Program {
	prog := make(core.Program, 0, n)
	for i := 0; i < n; i++ {
		prog = append(prog, core.Instruction{Op: core.OpAcc, Arg: gen()})
	}
	return prog
}

// Skipping builds a program that alternates a jmp +2 over an acc whose
// argument comes from poison, followed by an acc whose argument comes from
// gen, repeated n times, and closed by a jmp back to the start. Only the gen
// values are ever accumulated.
func Skipping(n int, gen, poison func() int) core.Program {
	prog := make(core.Program, 0, 3*n+1)
	for i := 0; i < n; i++ {
		prog = append(prog,
			core.Instruction{Op: core.OpJmp, Arg: 2},
			core.Instruction{Op: core.OpAcc, Arg: poison()},
			core.Instruction{Op: core.OpAcc, Arg: gen()},
		)
	}
	return append(prog, core.Instruction{Op: core.OpJmp, Arg: -len(prog)})
}

package core

import (
	"errors"
	"fmt"
)

// ErrNoRepair means no single jmp/nop swap makes the program complete.
var ErrNoRepair = errors.New("no single-instruction patch makes the program complete")

// RepairResult describes the patch that made a program complete.
type RepairResult struct {
	Index  int
	From   Instruction
	To     Instruction
	Result Result
	Tried  int // candidate patches run, the successful one included
}

// Swap returns the jmp/nop counterpart of inst. ok is false for any other
// opcode.
func Swap(inst Instruction) (Instruction, bool) {
	switch inst.Op {
	case OpJmp:
		return Instruction{Op: OpNop, Arg: inst.Arg}, true
	case OpNop:
		return Instruction{Op: OpJmp, Arg: inst.Arg}, true
	}
	return inst, false
}

// Repair tries swapping each jmp and nop in turn, in program order, and
// returns the first patched program that runs to completion. Candidates are
// run with ReportLoop so a patch that still loops is rejected as soon as the
// loop is seen. Errors other than a loop abort the search.
func Repair(prog Program, opts ...RunOption) (RepairResult, error) {
	tried := 0
	for i, inst := range prog {
		patch, ok := Swap(inst)
		if !ok {
			continue
		}
		tried++

		candidateOpts := append(opts[:len(opts):len(opts)],
			WithMode(ModeComplete),
			WithLoopPolicy(ReportLoop),
		)
		res, err := NewRun(prog.Patch(i, patch), candidateOpts...).Execute()
		if err != nil {
			return RepairResult{}, fmt.Errorf("patch %d (%v -> %v): %w", i, inst, patch, err)
		}

		Trace("RepairCandidate",
			"Index", i,
			"From", inst.String(),
			"To", patch.String(),
			"Status", res.Status,
			"Acc", res.Accumulator,
		)

		if res.Status == StatusCompleted {
			return RepairResult{
				Index:  i,
				From:   inst,
				To:     patch,
				Result: res,
				Tried:  tried,
			}, nil
		}
	}

	return RepairResult{Tried: tried}, ErrNoRepair
}

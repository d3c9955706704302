package verify

import (
	"fmt"

	"github.com/sarchlab/opmachine/core"
)

// RunLint performs static lint checks on a program.
// It validates structure (STRUCT) and control flow (FLOW).
// Issues are ordered by check, then by instruction index.
// Returns a list of issues found, or empty list if no issues.
func RunLint(prog core.Program) []Issue {
	var issues []Issue

	issues = append(issues, checkStruct(prog)...)
	issues = append(issues, checkSelfLoops(prog)...)
	issues = append(issues, checkReachability(prog)...)

	core.Trace("LintDone", "Instructions", len(prog), "Issues", len(issues))

	return issues
}

func checkStruct(prog core.Program) []Issue {
	var issues []Issue

	for i, inst := range prog {
		if !inst.Op.Known() {
			issues = append(issues, Issue{
				Type:    IssueStruct,
				Index:   i,
				Message: fmt.Sprintf("Unknown opcode %q", string(inst.Op)),
				Details: map[string]interface{}{"op": string(inst.Op)},
			})
			continue
		}

		if inst.Op != core.OpJmp {
			continue
		}

		// Landing exactly one past the end is a normal exit.
		target := i + inst.Arg
		if target < 0 || target > len(prog) {
			issues = append(issues, Issue{
				Type:  IssueStruct,
				Index: i,
				Message: fmt.Sprintf("Jump target %d outside program of %d instructions",
					target, len(prog)),
				Details: map[string]interface{}{
					"target": target,
					"length": len(prog),
				},
			})
		}
	}

	return issues
}

func checkSelfLoops(prog core.Program) []Issue {
	var issues []Issue

	for i, inst := range prog {
		if inst.Op == core.OpJmp && inst.Arg == 0 {
			issues = append(issues, Issue{
				Type:    IssueFlow,
				Index:   i,
				Message: "Jump to itself never exits",
				Details: map[string]interface{}{"target": i},
			})
		}
	}

	return issues
}

// successors returns the indices control can pass to from index i. Targets
// outside the program are dropped.
func successors(prog core.Program, i int) []int {
	var next int

	switch prog[i].Op {
	case core.OpAcc, core.OpNop:
		next = i + 1
	case core.OpJmp:
		next = i + prog[i].Arg
	default:
		return nil
	}

	if next < 0 || next >= len(prog) {
		return nil
	}

	return []int{next}
}

func checkReachability(prog core.Program) []Issue {
	if len(prog) == 0 {
		return nil
	}

	reached := make([]bool, len(prog))
	reached[0] = true
	work := []int{0}

	for len(work) > 0 {
		i := work[len(work)-1]
		work = work[:len(work)-1]

		for _, n := range successors(prog, i) {
			if !reached[n] {
				reached[n] = true
				work = append(work, n)
			}
		}
	}

	var issues []Issue
	for i, ok := range reached {
		if ok {
			continue
		}
		issues = append(issues, Issue{
			Type:    IssueFlow,
			Index:   i,
			Message: fmt.Sprintf("Instruction %v is unreachable from index 0", prog[i]),
			Details: map[string]interface{}{"inst": prog[i].String()},
		})
	}

	return issues
}

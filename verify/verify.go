// Package verify provides debugging tools for opcode machine programs.
//
// It implements three complementary stages:
//
// 1. Static Lint (lint.go): structural and control-flow checks that need no
// execution.
//   - STRUCT checks: unknown opcodes, jumps whose target lies outside the
//     program or one past its end
//   - FLOW checks: jumps to themselves, instructions that no path from
//     index 0 reaches
//
// 2. Functional Simulator (funcsim.go): a minimal interpreter of the hang
// detection semantics written independently of core.Run. The report runs
// both and flags any disagreement, which isolates bugs in the run state
// machine from bugs in the program.
//
// 3. Report (report.go): lint, hang detection, completion and repair over
// one program, written as text tables.
//
// # Usage Example
//
//	prog, err := core.LoadProgramFile("boot.txt")
//	if err != nil {
//	    return err
//	}
//
//	issues := verify.RunLint(prog)
//	for _, issue := range issues {
//	    log.Printf("[%s] %d: %s", issue.Type, issue.Index, issue.Message)
//	}
//
//	report := verify.GenerateReport(prog, "boot", verify.WithMaxSteps(10000))
//	report.WriteReport(os.Stdout)
package verify

import (
	"fmt"
)

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct IssueType = "STRUCT" // Malformed program (unknown opcode, wild jump)
	IssueFlow   IssueType = "FLOW"   // Suspicious control flow (self loop, dead code)
)

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType              // STRUCT or FLOW
	Index   int                    // Instruction index
	Message string                 // Human-readable description
	Details map[string]interface{} // Additional structured data
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %d: %s", i.Type, i.Index, i.Message)
}

// splitIssues partitions issues by type, keeping their order.
func splitIssues(issues []Issue) (structIssues, flowIssues []Issue) {
	for _, issue := range issues {
		if issue.Type == IssueStruct {
			structIssues = append(structIssues, issue)
		} else {
			flowIssues = append(flowIssues, issue)
		}
	}
	return structIssues, flowIssues
}

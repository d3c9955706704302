package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/opmachine/core"
)

// ReportOption configures GenerateReport.
type ReportOption func(*reportConfig)

type reportConfig struct {
	policy   core.LoopPolicy
	maxSteps int
}

// WithLoopPolicy sets the policy of the completion stage. The default is
// core.FallbackStep.
func WithLoopPolicy(policy core.LoopPolicy) ReportOption {
	return func(c *reportConfig) { c.policy = policy }
}

// WithMaxSteps bounds every run the report makes. Zero means no bound.
func WithMaxSteps(n int) ReportOption {
	return func(c *reportConfig) { c.maxSteps = n }
}

// VerificationReport represents a complete verification report
type VerificationReport struct {
	Name    string
	Program core.Program
	Policy  core.LoopPolicy

	LintIssues   []Issue
	StructIssues []Issue
	FlowIssues   []Issue

	Hang    core.Result
	HangErr error

	Completion    core.Result
	CompletionErr error

	// Repair is nil when the completion stage finished without falling back.
	Repair    *core.RepairResult
	RepairErr error

	SimAccumulator int
	SimErr         error
	SimAgrees      bool
}

// GenerateReport runs lint, hang detection, completion, repair and the
// functional simulator over prog, and returns a report
func GenerateReport(prog core.Program, name string, opts ...ReportOption) *VerificationReport {
	cfg := reportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	report := &VerificationReport{
		Name:    name,
		Program: prog,
		Policy:  cfg.policy,
	}

	report.LintIssues = RunLint(prog)
	report.StructIssues, report.FlowIssues = splitIssues(report.LintIssues)

	limit := core.WithMaxSteps(cfg.maxSteps)

	report.Hang, report.HangErr = core.DetectHang(prog, limit)
	report.Completion, report.CompletionErr = core.Complete(prog,
		limit, core.WithLoopPolicy(cfg.policy))

	if report.CompletionErr != nil ||
		report.Completion.Status != core.StatusCompleted ||
		report.Completion.Fallbacks > 0 {
		rr, err := core.Repair(prog, limit)
		report.RepairErr = err
		if err == nil {
			report.Repair = &rr
		}
	}

	fs := NewFunctionalSimulator(prog)
	report.SimErr = fs.Run(cfg.maxSteps)
	report.SimAccumulator = fs.GetAccumulator()
	report.SimAgrees = simAgrees(report)

	core.Trace("ReportGenerated",
		"Name", name,
		"Issues", len(report.LintIssues),
		"SimAgrees", report.SimAgrees,
	)

	return report
}

// simAgrees compares the simulator with the hang detection stage. Both must
// either succeed with the same accumulator or both fail.
func simAgrees(r *VerificationReport) bool {
	if r.HangErr != nil || r.SimErr != nil {
		return r.HangErr != nil && r.SimErr != nil
	}
	return r.Hang.Accumulator == r.SimAccumulator
}

func resultCells(res core.Result, err error) table.Row {
	if err != nil {
		return table.Row{"ERROR", "-", "-", "-", err.Error()}
	}
	return table.Row{res.Status.String(), res.Accumulator, res.Steps, res.Fallbacks, res.State.String()}
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "VERIFICATION REPORT: %s\n", r.Name)
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "\n✓ Loaded %d instructions\n", len(r.Program))

	// STAGE 1: LINT
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 1: STATIC LINT CHECKS")
	fmt.Fprintln(w, separator)

	if len(r.LintIssues) == 0 {
		fmt.Fprintln(w, "✓ No lint issues found!")
	} else {
		fmt.Fprintf(w, "⚠ Found %d lint issues:\n\n", len(r.LintIssues))

		issueTable := table.NewWriter()
		issueTable.AppendHeader(table.Row{"Type", "Index", "Instruction", "Message"})
		for _, issue := range r.LintIssues {
			inst := "-"
			if issue.Index >= 0 && issue.Index < len(r.Program) {
				inst = r.Program[issue.Index].String()
			}
			issueTable.AppendRow(table.Row{issue.Type, issue.Index, inst, issue.Message})
		}
		fmt.Fprintln(w, issueTable.Render())
	}

	// STAGE 2: RUNS
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 2: RUNS")
	fmt.Fprintln(w, separator)

	runTable := table.NewWriter()
	runTable.AppendHeader(table.Row{"Run", "Status", "Acc", "Steps", "Fallbacks", "Final"})
	runTable.AppendRow(append(table.Row{"hang-detect"}, resultCells(r.Hang, r.HangErr)...))
	runTable.AppendRow(append(table.Row{"complete/" + r.Policy.String()},
		resultCells(r.Completion, r.CompletionErr)...))
	fmt.Fprintln(w, runTable.Render())

	switch {
	case r.Repair != nil:
		fmt.Fprintf(w, "✓ Repair: swapping %v at %d to %v completes with acc=%d (%d candidates tried)\n",
			r.Repair.From, r.Repair.Index, r.Repair.To, r.Repair.Result.Accumulator, r.Repair.Tried)
	case r.RepairErr != nil:
		fmt.Fprintf(w, "⚠ Repair: %v\n", r.RepairErr)
	default:
		fmt.Fprintln(w, "✓ Repair not needed")
	}

	// STAGE 3: FUNCTIONAL SIMULATION
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 3: FUNCTIONAL SIMULATION")
	fmt.Fprintln(w, separator)

	if r.SimErr != nil {
		fmt.Fprintf(w, "⚠ Simulation error: %v\n", r.SimErr)
	} else {
		fmt.Fprintf(w, "✓ Simulation halted with acc=%d\n", r.SimAccumulator)
	}

	// SUMMARY
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "VERIFICATION SUMMARY")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "Lint Result: %d issues detected (%d STRUCT, %d FLOW)\n",
		len(r.LintIssues), len(r.StructIssues), len(r.FlowIssues))
	if r.SimAgrees {
		fmt.Fprintln(w, "Cross Check: run and simulator agree")
	} else {
		fmt.Fprintln(w, "Cross Check: MISMATCH between run and simulator")
	}

	fmt.Fprintln(w)
}

// SaveReportToFile saves the report to a file
func (r *VerificationReport) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}

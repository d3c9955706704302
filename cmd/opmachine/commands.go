package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"github.com/sarchlab/opmachine/config"
	"github.com/sarchlab/opmachine/core"
	"github.com/sarchlab/opmachine/verify"
)

// errLooping is returned by complete when the loop policy stops the run.
var errLooping = errors.New("program loops")

// errLint is returned by lint when a STRUCT issue was found.
var errLint = errors.New("lint found structural issues")

// withTrace attaches a table tracer to opts when tracing is on. The returned
// func prints the table, and is a no-op otherwise.
func withTrace(o *options, w io.Writer, title string, opts []core.RunOption) ([]core.RunOption, func()) {
	if !o.cfg.Trace {
		return opts, func() {}
	}

	tt := &core.TableTracer{Title: title}
	opts = append(opts, core.WithTracer(core.MultiTracer{tt, core.LogTracer{Name: title}}))

	return opts, func() {
		fmt.Fprintln(w, tt.Render())
	}
}

func programName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func newHangCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hang <program>",
		Short: "Print the accumulator just before any instruction runs twice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := core.LoadProgramFile(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			runOpts, printTrace := withTrace(o, w, programName(args[0]), o.cfg.RunOptions())
			res, err := core.DetectHang(prog, runOpts...)
			printTrace()
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "%d\n", res.Accumulator)
			fmt.Fprintf(cmd.ErrOrStderr(), "halted before repeating ip=%d after %d steps\n",
				res.State.IP, res.Steps)

			return nil
		},
	}
}

func newCompleteCmd(o *options) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "complete <program>",
		Short: "Run the program until it steps past its last instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := core.LoadProgramFile(args[0])
			if err != nil {
				return err
			}

			runOpts := o.cfg.RunOptions()
			if strict {
				runOpts = append(runOpts, core.WithLoopPolicy(core.ReportLoop))
			}

			w := cmd.OutOrStdout()
			runOpts, printTrace := withTrace(o, w, programName(args[0]), runOpts)
			res, err := core.Complete(prog, runOpts...)
			printTrace()
			if err != nil {
				return err
			}

			if res.Status == core.StatusLooping {
				return fmt.Errorf("%w: would re-enter ip=%d with acc=%d",
					errLooping, res.State.IP, res.Accumulator)
			}

			fmt.Fprintf(w, "%d\n", res.Accumulator)
			if res.Fallbacks > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "completed after %d fallback steps\n", res.Fallbacks)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "stop at the first loop instead of stepping past it")

	return cmd
}

func newRepairCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repair <program>",
		Short: "Find the jmp/nop swap that lets the program complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := core.LoadProgramFile(args[0])
			if err != nil {
				return err
			}

			rr, err := core.Repair(prog, core.WithMaxSteps(o.cfg.MaxSteps))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", rr.Result.Accumulator)
			fmt.Fprintf(cmd.ErrOrStderr(), "patched %d: %v -> %v (%d candidates)\n",
				rr.Index, rr.From, rr.To, rr.Tried)

			return nil
		},
	}
}

func newLintCmd(_ *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lint <program>",
		Short: "Check a program for structural and control-flow issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := core.LoadProgramFile(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			issues := verify.RunLint(prog)
			if len(issues) == 0 {
				fmt.Fprintln(w, "no issues")
				return nil
			}

			structCount := 0
			for _, issue := range issues {
				fmt.Fprintln(w, issue.String())
				if issue.Type == verify.IssueStruct {
					structCount++
				}
			}

			if structCount > 0 {
				return fmt.Errorf("%w: %d", errLint, structCount)
			}
			return nil
		},
	}
}

func newReportCmd(o *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "report <program>",
		Short: "Write a verification report covering lint, runs and repair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := core.LoadProgramFile(args[0])
			if err != nil {
				return err
			}

			policy, err := o.cfg.Policy()
			if err != nil {
				return err
			}
			report := verify.GenerateReport(prog, programName(args[0]),
				verify.WithLoopPolicy(policy),
				verify.WithMaxSteps(o.cfg.MaxSteps),
			)

			if output == "" {
				report.WriteReport(cmd.OutOrStdout())
				return nil
			}

			if err := report.SaveReportToFile(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", output)

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to this file")

	return cmd
}

func newSimCmd(o *options) *cobra.Command {
	var (
		cores   int
		monitor bool
	)

	cmd := &cobra.Command{
		Use:   "sim <program>...",
		Short: "Time programs on simulated cores, one program per core",
		Long: `sim maps programs onto cores of a simulated device and runs them on one
akita engine, one instruction per cycle. A single program is mapped to
every core.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := o.cfg
			if cmd.Flags().Changed("cores") {
				cfg.Cores = cores
			}
			if len(args) > 1 {
				cfg.Cores = len(args)
			}
			if cmd.Flags().Changed("monitor") {
				cfg.Monitor = monitor
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			progs := make([]core.Program, 0, len(args))
			for _, path := range args {
				prog, err := core.LoadProgramFile(path)
				if err != nil {
					return err
				}
				progs = append(progs, prog)
			}

			engine := sim.NewSerialEngine()
			dev := config.NewDeviceBuilder(cfg).
				WithEngine(engine).
				Build("Device")

			if cfg.Monitor {
				m := monitoring.NewMonitor()
				m.RegisterEngine(engine)
				for _, c := range dev.Cores {
					m.RegisterComponent(c)
				}
				m.StartServer()
			}

			if len(progs) == 1 {
				dev.MapAll(progs[0])
			} else {
				for i, prog := range progs {
					dev.MapProgram(i, prog)
				}
			}

			if err := dev.Run(); err != nil {
				return err
			}

			writeSimTable(cmd.OutOrStdout(), dev.Results())

			return nil
		},
	}

	cmd.Flags().IntVar(&cores, "cores", 1, "number of cores when a single program is given")
	cmd.Flags().BoolVar(&monitor, "monitor", false, "serve the akita monitor while simulating")

	return cmd
}

func writeSimTable(w io.Writer, results []config.CoreResult) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Core", "Status", "Acc", "Steps", "Finish (ns)", "Error"})
	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		t.AppendRow(table.Row{
			r.Name,
			r.Result.Status,
			r.Result.Accumulator,
			r.Result.Steps,
			fmt.Sprintf("%.0f", float64(r.FinishTime)*1e9),
			errText,
		})
	}
	fmt.Fprintln(w, t.Render())
}

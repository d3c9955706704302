// Command opmachine runs, repairs and inspects opcode machine programs.
//
// Usage:
//
//	opmachine hang boot.txt
//	opmachine complete --strict boot.txt
//	opmachine repair boot.txt
//	opmachine lint boot.txt
//	opmachine report -o report.txt boot.txt
//	opmachine sim --cores 4 --monitor boot.txt
package main

import (
	"bufio"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/opmachine/config"
)

// options collects the persistent flags and the config they resolve to.
type options struct {
	configPath string
	verbose    bool
	trace      bool
	maxSteps   int
	policy     string

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "opmachine",
		Short: "Run and repair programs for the accumulator opcode machine",
		Long: `opmachine executes programs made of acc, jmp and nop instructions.

It finds the accumulator value before the first repeated instruction,
runs programs to completion, searches for the single jmp/nop swap that
lets a looping program finish, and lints programs statically.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	flags.BoolVar(&opts.trace, "trace", false, "print a trace table of every run")
	flags.IntVar(&opts.maxSteps, "max-steps", 0, "abort runs after this many instructions (0 = unbounded)")
	flags.StringVar(&opts.policy, "loop-policy", "", "completion loop policy: fallback or report")

	rootCmd.AddCommand(
		newHangCmd(opts),
		newCompleteCmd(opts),
		newRepairCmd(opts),
		newLintCmd(opts),
		newReportCmd(opts),
		newSimCmd(opts),
	)

	return rootCmd
}

// resolve loads the config file, applies flag overrides and installs the
// logger.
func (o *options) resolve(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("trace") {
		cfg.Trace = o.trace
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = o.maxSteps
	}
	if flags.Changed("loop-policy") {
		cfg.LoopPolicy = o.policy
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	o.cfg = cfg
	slog.Debug("ConfigResolved",
		"Mode", cfg.Mode,
		"LoopPolicy", cfg.LoopPolicy,
		"MaxSteps", cfg.MaxSteps,
		"Level", level,
	)

	return nil
}

func main() {
	out := bufio.NewWriter(os.Stdout)
	atexit.Register(func() {
		out.Flush()
	})

	rootCmd := newRootCmd()
	rootCmd.SetOut(out)

	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

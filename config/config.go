// Package config loads run settings from YAML and builds cores and devices
// from them.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/opmachine/core"
)

// Config holds the settings shared by the CLI and the samples.
//
//	mode: complete
//	loop_policy: report
//	max_steps: 100000
//	log_level: debug
//	trace: true
//	freq_ghz: 1
//	cores: 4
//	monitor: false
type Config struct {
	Mode       string  `yaml:"mode"`        // hang or complete
	LoopPolicy string  `yaml:"loop_policy"` // fallback or report
	MaxSteps   int     `yaml:"max_steps"`   // 0 means unbounded
	LogLevel   string  `yaml:"log_level"`   // trace, debug, info, warn or error
	Trace      bool    `yaml:"trace"`       // print a trace table per run
	FreqGHz    float64 `yaml:"freq_ghz"`    // core clock for simulated runs
	Cores      int     `yaml:"cores"`       // cores per simulated device
	Monitor    bool    `yaml:"monitor"`     // serve the akita monitor during sim
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Mode:       "hang",
		LoopPolicy: "fallback",
		LogLevel:   "warn",
		FreqGHz:    1,
		Cores:      1,
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error

	if _, err := c.RunMode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Policy(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("max_steps must not be negative, got %d", c.MaxSteps))
	}
	if c.FreqGHz <= 0 {
		errs = append(errs, fmt.Errorf("freq_ghz must be positive, got %v", c.FreqGHz))
	}
	if c.Cores < 1 {
		errs = append(errs, fmt.Errorf("cores must be at least 1, got %d", c.Cores))
	}

	return errors.Join(errs...)
}

// RunMode converts the mode field.
func (c Config) RunMode() (core.Mode, error) {
	switch strings.ToLower(c.Mode) {
	case "hang", "hang-detect":
		return core.ModeHangDetect, nil
	case "complete":
		return core.ModeComplete, nil
	}
	return 0, fmt.Errorf("unknown mode %q", c.Mode)
}

// Policy converts the loop_policy field.
func (c Config) Policy() (core.LoopPolicy, error) {
	switch strings.ToLower(c.LoopPolicy) {
	case "", "fallback":
		return core.FallbackStep, nil
	case "report":
		return core.ReportLoop, nil
	}
	return 0, fmt.Errorf("unknown loop policy %q", c.LoopPolicy)
}

// Level converts the log_level field. "trace" maps to core.LevelTrace.
func (c Config) Level() (slog.Level, error) {
	if strings.EqualFold(c.LogLevel, "trace") {
		return core.LevelTrace, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}

// Freq returns the core clock.
func (c Config) Freq() sim.Freq {
	return sim.Freq(c.FreqGHz) * sim.GHz
}

// mustPolicy panics on a policy that Validate would reject.
func (c Config) mustPolicy() core.LoopPolicy {
	policy, err := c.Policy()
	if err != nil {
		panic(fmt.Sprintf("invalid config: %v", err))
	}
	return policy
}

func (c Config) mustRunMode() core.Mode {
	mode, err := c.RunMode()
	if err != nil {
		panic(fmt.Sprintf("invalid config: %v", err))
	}
	return mode
}

// RunOptions turns the config into options for core.NewRun. The mode is
// left to the caller. It panics if the loop policy is invalid.
func (c Config) RunOptions() []core.RunOption {
	policy := c.mustPolicy()
	return []core.RunOption{
		core.WithLoopPolicy(policy),
		core.WithMaxSteps(c.MaxSteps),
	}
}

// CoreBuilder returns a core builder with the config applied. It panics if
// the config is invalid.
func (c Config) CoreBuilder(engine sim.Engine) core.Builder {
	mode := c.mustRunMode()
	policy := c.mustPolicy()

	return core.NewBuilder().
		WithEngine(engine).
		WithFreq(c.Freq()).
		WithMode(mode).
		WithLoopPolicy(policy).
		WithMaxSteps(c.MaxSteps)
}

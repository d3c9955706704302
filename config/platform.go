package config

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/opmachine/core"
)

// DeviceBuilder can build devices of independent cores sharing one engine.
type DeviceBuilder struct {
	engine  sim.Engine
	builder core.Builder
	cores   int
}

// NewDeviceBuilder returns a builder that takes its core settings from cfg.
func NewDeviceBuilder(cfg Config) DeviceBuilder {
	return DeviceBuilder{
		builder: cfg.CoreBuilder(nil),
		cores:   cfg.Cores,
	}
}

// WithEngine sets the engine that drives the device simulation.
func (d DeviceBuilder) WithEngine(engine sim.Engine) DeviceBuilder {
	d.engine = engine
	return d
}

// WithCoreBuilder replaces the builder used for every core.
func (d DeviceBuilder) WithCoreBuilder(b core.Builder) DeviceBuilder {
	d.builder = b
	return d
}

// WithNumCores sets the number of cores.
func (d DeviceBuilder) WithNumCores(n int) DeviceBuilder {
	d.cores = n
	return d
}

// Build creates a device.
func (d DeviceBuilder) Build(name string) *Device {
	if d.cores < 1 {
		panic("a device needs at least one core")
	}

	dev := &Device{
		Name:   name,
		engine: d.engine,
		Cores:  make([]*core.Core, d.cores),
	}

	b := d.builder.WithEngine(d.engine)
	for i := range dev.Cores {
		dev.Cores[i] = b.Build(fmt.Sprintf("%s.Core[%d]", name, i))
	}

	return dev
}

// Device is a group of cores run together on one engine.
type Device struct {
	Name   string
	Cores  []*core.Core
	engine sim.Engine
}

// MapProgram maps a program to the core at index.
func (d *Device) MapProgram(index int, prog core.Program) {
	if index < 0 || index >= len(d.Cores) {
		panic(fmt.Sprintf("core %d does not exist in %s", index, d.Name))
	}
	d.Cores[index].MapProgram(prog)
}

// MapAll maps the same program to every core.
func (d *Device) MapAll(prog core.Program) {
	for _, c := range d.Cores {
		c.MapProgram(prog)
	}
}

// Run runs the engine until every mapped program finished.
func (d *Device) Run() error {
	return d.engine.Run()
}

// CoreResult is the outcome of one core of a device.
type CoreResult struct {
	Name       string
	Result     core.Result
	Err        error
	FinishTime sim.VTimeInSec
}

// Results collects the outcome of every core in order.
func (d *Device) Results() []CoreResult {
	results := make([]CoreResult, 0, len(d.Cores))
	for _, c := range d.Cores {
		res, err := c.Result()
		results = append(results, CoreResult{
			Name:       c.Name(),
			Result:     res,
			Err:        err,
			FinishTime: c.FinishTime(),
		})
	}
	return results
}

package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/opmachine/config"
	"github.com/sarchlab/opmachine/core"
)

//go:embed bootcode.txt
var bootcode string

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	prog, err := core.ParseProgramString(bootcode)
	if err != nil {
		fmt.Println("Failed to parse program:", err)
		atexit.Exit(1)
	}
	core.PrintProgram(os.Stdout, prog)

	tt := &core.TableTracer{Title: "hang detection"}
	hang, err := core.DetectHang(prog, core.WithTracer(tt))
	if err != nil {
		fmt.Println("Hang detection failed:", err)
		atexit.Exit(1)
	}
	fmt.Println(tt.Render())
	core.PrintState("hang", hang.State)

	complete, err := core.Complete(prog)
	if err != nil {
		fmt.Println("Completion failed:", err)
		atexit.Exit(1)
	}
	core.LogState("complete", complete.State)
	fmt.Printf("Completed with %d fallback steps, acc=%d\n", complete.Fallbacks, complete.Accumulator)

	rr, err := core.Repair(prog)
	if err != nil {
		fmt.Println("Repair failed:", err)
		atexit.Exit(1)
	}
	fmt.Printf("Repaired %d: %v -> %v, acc=%d\n", rr.Index, rr.From, rr.To, rr.Result.Accumulator)

	// Time the original and the repaired program side by side.
	cfg := config.Default()
	cfg.Mode = "complete"
	cfg.LoopPolicy = "report"
	cfg.Cores = 2

	engine := sim.NewSerialEngine()
	dev := config.NewDeviceBuilder(cfg).WithEngine(engine).Build("Device")
	dev.MapProgram(0, prog)
	dev.MapProgram(1, prog.Patch(rr.Index, rr.To))
	if err := dev.Run(); err != nil {
		fmt.Println("Simulation failed:", err)
		atexit.Exit(1)
	}

	for _, r := range dev.Results() {
		fmt.Printf("%s: %v acc=%d at %.0f ns\n",
			r.Name, r.Result.Status, r.Result.Accumulator, float64(r.FinishTime)*1e9)
	}

	atexit.Exit(0)
}

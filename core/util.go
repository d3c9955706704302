package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
)

// LevelTrace sits below debug. Runs log every instruction at this level, so
// it is only shown when asked for by name.
const (
	LevelTrace slog.Level = slog.LevelDebug - 4
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// TableTracer records every event of a run and renders them as a table.
type TableTracer struct {
	Title string
	rows  []table.Row
	halt  string
}

func (t *TableTracer) OnStep(index int, inst Instruction, from, to State) {
	t.rows = append(t.rows, table.Row{len(t.rows), index, inst.String(), "step", from.IP, to.IP, to.Acc})
}

func (t *TableTracer) OnFallback(index int, inst Instruction, from, to State) {
	t.rows = append(t.rows, table.Row{len(t.rows), index, inst.String(), "fallback", from.IP, to.IP, to.Acc})
}

func (t *TableTracer) OnHalt(status Status, final State) {
	t.halt = fmt.Sprintf("%s at %v", status, final)
}

// Len returns the number of recorded events, halts excluded.
func (t *TableTracer) Len() int {
	return len(t.rows)
}

// Render returns the recorded trace as a text table.
func (t *TableTracer) Render() string {
	tw := table.NewWriter()
	if t.Title != "" {
		tw.SetTitle("%s", t.Title)
	}

	tw.AppendHeader(table.Row{"#", "Index", "Instruction", "Kind", "From IP", "To IP", "Acc"})
	tw.AppendRows(t.rows)
	if t.halt != "" {
		tw.AppendFooter(table.Row{"", "", "", "", "", "", t.halt})
	}

	return tw.Render()
}

// PrintState prints a state the way the trace table shows it.
func PrintState(name string, state State) {
	stateTable := table.NewWriter()
	stateTable.SetTitle("%s", name)
	stateTable.AppendHeader(table.Row{"IP", "Acc"})
	stateTable.AppendRow(table.Row{state.IP, state.Acc})
	fmt.Println(stateTable.Render())
}

func LogState(name string, state State) {
	slog.Debug("StateCheckpoint",
		"Name", name,
		"IP", state.IP,
		"Acc", state.Acc,
	)
}

package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
)

const rule = "================================================================================"

// ConsoleReporter prints the breaking loop for CLI use.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a reporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return NewConsoleReporterTo(os.Stdout)
}

// NewConsoleReporterTo creates a reporter writing to out.
func NewConsoleReporterTo(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// Snapshot prints the size of the starting graph. Later snapshots are
// summarised by Record.
func (r *ConsoleReporter) Snapshot(ctx context.Context, iteration int, g graph.View) error {
	if iteration != 0 {
		return nil
	}
	fmt.Fprintln(r.out, "Arbitrage Graph")
	fmt.Fprintln(r.out, "======================")
	if id := domain.RunIDFromContext(ctx); id != "" {
		fmt.Fprintf(r.out, "Run:     %s\n", id)
	}
	fmt.Fprintf(r.out, "Nodes:   %d\n", g.NodeCount())
	fmt.Fprintf(r.out, "Edges:   %d\n", g.EdgeCount())
	return nil
}

// Record prints one detected cycle.
func (r *ConsoleReporter) Record(_ context.Context, row domain.MetricsRow, cycle domain.Cycle) error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "NEGATIVE CYCLE #%d\n", row.Iteration)
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "Path:           %s\n", cycle.String())
	fmt.Fprintf(r.out, "Length:         %d\n", row.CycleLength)
	fmt.Fprintf(r.out, "Profit:         %.6f (%+.4f%%)\n", row.Profit, (row.Profit-1)*100)
	fmt.Fprintf(r.out, "Avg out-degree: %.4f\n", row.AvgOutDegree)
	return nil
}

// Finish prints the summary table.
func (r *ConsoleReporter) Finish(_ context.Context, rows []domain.MetricsRow) error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "No more negative cycles. %d processed.\n", len(rows))
	if len(rows) == 0 {
		return nil
	}
	fmt.Fprintln(r.out, strings.Repeat("-", len(rule)))
	fmt.Fprintf(r.out, "%-10s %-16s %-8s %s\n", "iteration", "profit", "length", "avg_out_degree")
	for _, row := range rows {
		fmt.Fprintf(r.out, "%-10d %-16.6f %-8d %.4f\n", row.Iteration, row.Profit, row.CycleLength, row.AvgOutDegree)
	}
	return nil
}

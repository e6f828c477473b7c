package infra

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
	"github.com/fd1az/arbgraph/pkg/ui"
)

// MessageSender delivers messages to a running Bubble Tea program.
type MessageSender interface {
	Send(msg tea.Msg)
}

// SenderFunc adapts a function to MessageSender.
type SenderFunc func(msg tea.Msg)

func (f SenderFunc) Send(msg tea.Msg) { f(msg) }

// TUIReporter forwards loop events to the TUI.
type TUIReporter struct {
	NopExporter
	sender MessageSender
	source string
}

// NewTUIReporter creates a reporter sending to sender. source names the quote
// source shown in the header.
func NewTUIReporter(sender MessageSender, source string) *TUIReporter {
	return &TUIReporter{sender: sender, source: source}
}

// Snapshot announces the run on iteration 0 and reports the graph size.
func (r *TUIReporter) Snapshot(ctx context.Context, iteration int, g graph.View) error {
	if iteration == 0 {
		r.sender.Send(ui.RunStartedMsg{
			RunID:  domain.RunIDFromContext(ctx),
			Source: r.source,
			Nodes:  g.NodeCount(),
			Edges:  g.EdgeCount(),
		})
	}
	r.sender.Send(ui.SnapshotMsg{
		Iteration: iteration,
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
	})
	return nil
}

func (r *TUIReporter) Record(_ context.Context, row domain.MetricsRow, cycle domain.Cycle) error {
	r.sender.Send(ui.CycleMsg{
		Iteration:    row.Iteration,
		Path:         cycle.String(),
		Length:       row.CycleLength,
		Profit:       row.Profit,
		AvgOutDegree: row.AvgOutDegree,
	})
	return nil
}

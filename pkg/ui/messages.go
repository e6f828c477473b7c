// Package ui provides the Bubble Tea TUI for arbgraph runs.
package ui

import "time"

// Message types for TUI updates

// RunStartedMsg is sent once the graph is built and sampled.
type RunStartedMsg struct {
	RunID  string
	Source string
	Nodes  int
	Edges  int
}

// SnapshotMsg is sent after every graph snapshot, iteration 0 included.
type SnapshotMsg struct {
	Iteration int
	Nodes     int
	Edges     int
}

// CycleMsg is sent for every negative cycle found.
type CycleMsg struct {
	Iteration    int
	Path         string
	Length       int
	Profit       float64
	AvgOutDegree float64
}

// RunFinishedMsg is sent when the run is over, successfully or not.
type RunFinishedMsg struct {
	Iterations   int
	Stopped      string
	ExportErrors int
	Duration     time.Duration
	Err          error
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartRunMsg signals that the run should begin.
type StartRunMsg struct{}

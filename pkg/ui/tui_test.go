package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_RunFlow(t *testing.T) {
	started := make(chan struct{}, 1)
	OnStartRun = func() { started <- struct{}{} }
	defer func() { OnStartRun = nil }()

	m := New()
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.phase != PhaseRunning {
		t.Fatalf("phase = %s, want running", m.phase)
	}
	<-started

	m = update(t, m, RunStartedMsg{RunID: "run-1", Source: "file", Nodes: 3, Edges: 6})
	m = update(t, m, CycleMsg{Iteration: 0, Path: "A -> B -> C -> A", Length: 3, Profit: 1.25})
	m = update(t, m, CycleMsg{Iteration: 1, Path: "A -> C -> A", Length: 2, Profit: 1.1})
	m = update(t, m, SnapshotMsg{Iteration: 2, Nodes: 1, Edges: 0})
	m = update(t, m, RunFinishedMsg{Iterations: 2, Stopped: "no_cycle"})

	if m.phase != PhaseDone {
		t.Errorf("phase = %s, want done", m.phase)
	}
	st := m.stats.Stats()
	if st.Iterations != 2 || st.StartNodes != 3 || st.Nodes != 1 {
		t.Errorf("stats = %+v", st)
	}
	if st.BestProfit.StringFixed(2) != "1.25" {
		t.Errorf("best profit = %s", st.BestProfit)
	}
	if m.cycles.Len() != 2 {
		t.Errorf("cycles = %d", m.cycles.Len())
	}

	view := m.View()
	for _, want := range []string{"A -> B -> C -> A", "25.0000%", "no_cycle", "run-1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_ErrorsAreCapped(t *testing.T) {
	m := New()
	m.phase = PhaseRunning
	for i := 0; i < 5; i++ {
		m = update(t, m, ErrorMsg{Error: errors.New("boom")})
	}
	if len(m.errors) != 3 {
		t.Errorf("errors = %d, want 3", len(m.errors))
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if len(m.errors) != 0 {
		t.Error("e should clear errors")
	}
}

func TestModel_Quit(t *testing.T) {
	m := New()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !next.(Model).quitting || cmd == nil {
		t.Error("ctrl+c should quit")
	}
}

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/fd1az/arbgraph/pkg/ui/components"
)

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome Phase = "welcome" // Initial welcome screen
	PhaseRunning Phase = "running" // Loading, building and breaking cycles
	PhaseDone    Phase = "done"    // Run finished, results on screen
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	cycles  *components.CyclesComponent
	stats   *components.StatsComponent
	spinner spinner.Model
	help    help.Model
	keys    KeyMap

	phase        Phase
	welcomeStart time.Time
	runStart     time.Time

	quitting bool
	width    int
	height   int

	runID    string
	source   string
	finished *RunFinishedMsg
	errors   []ErrorEntry // last 3
	logs     []string     // last 5
}

// New creates a new TUI model.
func New() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = RunningStyle

	return Model{
		cycles:       components.NewCyclesComponent(200, 12),
		stats:        components.NewStatsComponent(),
		spinner:      sp,
		help:         help.New(),
		keys:         DefaultKeyMap(),
		phase:        PhaseWelcome,
		welcomeStart: time.Now(),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick)
}

// tickCmd returns a command that sends a tick every 100ms.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips ahead
		if m.phase == PhaseWelcome {
			m.startRun()
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Up):
			m.cycles.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.cycles.ScrollDown()
		case key.Matches(msg, m.keys.Clear):
			m.errors = nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.startRun()
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case RunStartedMsg:
		m.runID = msg.RunID
		m.source = msg.Source
		st := m.stats.Stats()
		st.StartNodes, st.StartEdges = msg.Nodes, msg.Edges
		st.Nodes, st.Edges = msg.Nodes, msg.Edges
		m.stats.Update(st)
		m.logs = addLog(m.logs, "info", fmt.Sprintf("graph ready: %d nodes, %d edges", msg.Nodes, msg.Edges))

	case SnapshotMsg:
		st := m.stats.Stats()
		st.Iterations = msg.Iteration
		st.Nodes, st.Edges = msg.Nodes, msg.Edges
		m.stats.Update(st)

	case CycleMsg:
		profit := decimal.NewFromFloat(msg.Profit)
		m.cycles.Add(components.CycleRow{
			Iteration:    msg.Iteration,
			Path:         msg.Path,
			Length:       msg.Length,
			Profit:       profit,
			AvgOutDegree: msg.AvgOutDegree,
		})
		st := m.stats.Stats()
		if profit.GreaterThan(st.BestProfit) {
			st.BestProfit = profit
		}
		m.stats.Update(st)

	case RunFinishedMsg:
		m.phase = PhaseDone
		m.finished = &msg
		st := m.stats.Stats()
		st.Iterations = msg.Iterations
		st.ExportErrors = msg.ExportErrors
		m.stats.Update(st)
		if msg.Err != nil {
			m.errors = addError(m.errors, msg.Err.Error())
		}

	case ErrorMsg:
		m.errors = addError(m.errors, msg.Error.Error())
		m.logs = addLog(m.logs, "error", msg.Error.Error())

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)
	}

	return m, nil
}

func (m *Model) startRun() {
	m.phase = PhaseRunning
	m.runStart = time.Now()
	// Trigger callback directly (don't use Send() from within Update)
	if OnStartRun != nil {
		go OnStartRun()
	}
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	line := fmt.Sprintf("[%s] %s: %s", time.Now().Format("15:04:05"), level, message)
	logs = append(logs, line)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// addError keeps the last 3 errors.
func addError(errs []ErrorEntry, message string) []ErrorEntry {
	errs = append(errs, ErrorEntry{Message: message, Timestamp: time.Now()})
	if len(errs) > 3 {
		errs = errs[len(errs)-3:]
	}
	return errs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}
	if m.phase == PhaseWelcome {
		return m.renderWelcomeScreen()
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" arbgraph: negative cycle breaker "))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	width := max(m.width-4, 40)
	b.WriteString(BoxStyle.Width(width).Render(m.stats.View()))
	b.WriteString("\n")
	b.WriteString(BoxStyle.Width(width).Render(m.cycles.View()))
	b.WriteString("\n")

	if len(m.logs) > 0 {
		b.WriteString(MutedValue.Render(strings.Join(m.logs, "\n")))
		b.WriteString("\n")
	}

	if len(m.errors) > 0 {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Bold(true).Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	switch m.phase {
	case PhaseRunning:
		parts = append(parts, m.spinner.View()+RunningStyle.Render(" Breaking cycles"))
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Elapsed: %s", time.Since(m.runStart).Round(time.Second))))
	case PhaseDone:
		status := DoneStyle.Render("✓ Done")
		if m.finished != nil {
			if m.finished.Err != nil {
				status = ErrorStyle.Bold(true).Render("✗ Stopped")
			}
			parts = append(parts, status,
				fmt.Sprintf("Reason: %s", m.finished.Stopped),
				MutedValue.Render(fmt.Sprintf("Took: %s", m.finished.Duration.Round(time.Millisecond))))
		} else {
			parts = append(parts, status)
		}
	}

	if m.source != "" {
		parts = append(parts, "Source: "+m.source)
	}
	if m.runID != "" {
		parts = append(parts, MutedValue.Render("Run: "+m.runID))
	}
	return strings.Join(parts, "  │  ")
}

// renderWelcomeScreen renders the welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	elapsed := time.Since(m.welcomeStart)
	dots := strings.Repeat(".", int(elapsed.Milliseconds()/300)%4)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")
	sb.WriteString(titleStyle.Render("        A R B G R A P H"))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("   negative cycle detection over log-weighted quotes"))
	sb.WriteString("\n\n\n")
	sb.WriteString(DoneStyle.Render(fmt.Sprintf("              Initializing%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("        Press any key to skip, or wait..."))
	sb.WriteString("\n")
	return sb.String()
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartRun is called when the welcome screen completes and the run should
// start. Set by main.
var OnStartRun func()

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}

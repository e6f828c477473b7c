package ui

import "github.com/charmbracelet/lipgloss"

// Palette shared with the components package, which repeats the hex values
// inline to avoid importing ui.
var (
	ColorPrimary = lipgloss.Color("#7C3AED")
	ColorGain    = lipgloss.Color("#10B981")
	ColorDanger  = lipgloss.Color("#EF4444")
	ColorActive  = lipgloss.Color("#F59E0B")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorBorder  = lipgloss.Color("#374151")
)

var (
	// BoxStyle frames the stats and cycle panels.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorPrimary).
			Padding(0, 2)

	// RunningStyle marks a run still breaking cycles.
	RunningStyle = lipgloss.NewStyle().Foreground(ColorActive).Bold(true)

	// DoneStyle marks a run that ran out of cycles.
	DoneStyle = lipgloss.NewStyle().Foreground(ColorGain).Bold(true)

	ErrorStyle = lipgloss.NewStyle().Foreground(ColorDanger)
	MutedValue = lipgloss.NewStyle().Foreground(ColorMuted)
)

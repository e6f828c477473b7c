package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Stats holds run statistics for display.
type Stats struct {
	Iterations   int
	StartNodes   int
	StartEdges   int
	Nodes        int
	Edges        int
	BestProfit   decimal.Decimal
	ExportErrors int
}

// StatsComponent renders statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Update replaces the statistics.
func (s *StatsComponent) Update(stats Stats) {
	s.stats = stats
}

// Stats returns the current statistics.
func (s *StatsComponent) Stats() Stats {
	return s.stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	errorsDisplay := valueStyle.Render(fmt.Sprintf("%d", s.stats.ExportErrors))
	if s.stats.ExportErrors > 0 {
		errorsDisplay = errorStyle.Render(fmt.Sprintf("%d", s.stats.ExportErrors))
	}

	best := "-"
	if !s.stats.BestProfit.IsZero() {
		best = s.stats.BestProfit.StringFixed(6)
	}

	return style.Render("STATS") + "\n" +
		fmt.Sprintf("Iterations: %s  │  Nodes: %s / %d  │  Edges: %s / %d\n",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Iterations)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Nodes)), s.stats.StartNodes,
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Edges)), s.stats.StartEdges,
		) +
		fmt.Sprintf("Best profit: %s  │  Export errors: %s",
			valueStyle.Render(best),
			errorsDisplay,
		)
}

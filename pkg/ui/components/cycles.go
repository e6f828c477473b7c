// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CycleRow is one detected cycle in the list.
type CycleRow struct {
	Iteration    int
	Path         string
	Length       int
	Profit       decimal.Decimal
	AvgOutDegree float64
}

// GainPct is the profit above break-even in percent.
func (r CycleRow) GainPct() decimal.Decimal {
	return r.Profit.Sub(decimal.NewFromInt(1)).Mul(hundred)
}

// CyclesComponent renders the most recent cycles, newest first.
type CyclesComponent struct {
	rows    []CycleRow
	maxRows int
	visible int
	offset  int
}

// NewCyclesComponent keeps up to maxRows rows and shows visible of them.
func NewCyclesComponent(maxRows, visible int) *CyclesComponent {
	return &CyclesComponent{maxRows: maxRows, visible: visible}
}

// Add prepends a row, dropping the oldest past maxRows.
func (c *CyclesComponent) Add(row CycleRow) {
	c.rows = append([]CycleRow{row}, c.rows...)
	if len(c.rows) > c.maxRows {
		c.rows = c.rows[:c.maxRows]
	}
	if c.offset > 0 {
		// Keep the same rows in view while new ones arrive.
		c.offset = min(c.offset+1, c.maxOffset())
	}
}

// Len returns the number of stored rows.
func (c *CyclesComponent) Len() int {
	return len(c.rows)
}

// ScrollUp moves the view towards newer rows.
func (c *CyclesComponent) ScrollUp() {
	if c.offset > 0 {
		c.offset--
	}
}

// ScrollDown moves the view towards older rows.
func (c *CyclesComponent) ScrollDown() {
	if c.offset < c.maxOffset() {
		c.offset++
	}
}

func (c *CyclesComponent) maxOffset() int {
	return max(len(c.rows)-c.visible, 0)
}

// View renders the cycles table.
func (c *CyclesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	gainStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("NEGATIVE CYCLES (%d)", len(c.rows))))
	b.WriteString("\n")

	if len(c.rows) == 0 {
		b.WriteString(mutedStyle.Render("No cycles detected yet..."))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%5s  %-4s %12s  %8s  %s\n", "#", "len", "gain", "avg deg", "path"))
	end := min(c.offset+c.visible, len(c.rows))
	for _, row := range c.rows[c.offset:end] {
		b.WriteString(fmt.Sprintf("%5d  %-4d %12s  %8.3f  %s\n",
			row.Iteration,
			row.Length,
			gainStyle.Render(row.GainPct().StringFixed(4)+"%"),
			row.AvgOutDegree,
			row.Path,
		))
	}
	if c.offset > 0 || end < len(c.rows) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("showing %d-%d of %d", c.offset+1, end, len(c.rows))))
	}
	return strings.TrimRight(b.String(), "\n")
}

package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))

	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	metricLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	metricValue = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)
)

// sparkline renders the last width values as block characters.
func sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(chars)-1))
		b.WriteRune(chars[idx])
	}
	return b.String()
}

// Package components provides reusable TUI widgets for the piggy dashboard.
package components

import (
	"github.com/piggymobile/piggy/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Metric is one headline number on the status tab.
type Metric struct {
	Label string
	Value string
	Note  string
	Color lipgloss.Color // value color; zero means primary text
}

// LayoutRow splits totalWidth into n columns summing to totalWidth; the
// leftmost columns take the remainder.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	widths := make([]int, n)
	for i := range widths {
		widths[i] = totalWidth / n
		if i < totalWidth%n {
			widths[i]++
		}
	}
	return widths
}

// frame is the rounded border shared by every card. outerWidth includes
// the border columns.
func frame(outerWidth int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Active.Border).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)
}

// MetricCard renders a small card with a label, a value and a note.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active
	color := m.Color
	if color == "" {
		color = t.TextPrimary
	}

	lines := []string{
		lipgloss.NewStyle().Foreground(t.TextMuted).Render(m.Label),
		lipgloss.NewStyle().Foreground(color).Bold(true).Render(m.Value),
	}
	if m.Note != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.TextDim).Render(m.Note))
	}
	return frame(outerWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// MetricCardRow renders metric cards side by side, summing to totalWidth.
func MetricCardRow(metrics []Metric, totalWidth int) string {
	if len(metrics) == 0 {
		return ""
	}

	widths := LayoutRow(totalWidth, len(metrics))
	rendered := make([]string, 0, len(metrics))
	for i, m := range metrics {
		rendered = append(rendered, MetricCard(m, widths[i]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// ContentCard renders a bordered card with an optional title line.
func ContentCard(title, body string, outerWidth int) string {
	if title != "" {
		heading := lipgloss.NewStyle().Foreground(theme.Active.TextMuted).Bold(true).Render(title)
		body = heading + "\n" + body
	}
	return frame(outerWidth).Render(body)
}

// CardRow joins pre-rendered cards horizontally.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// CardInnerWidth returns the usable text width inside a ContentCard
// given its outer width (subtracts border + padding).
func CardInnerWidth(outerWidth int) int {
	return max(outerWidth-4, 10)
}

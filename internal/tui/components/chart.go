package components

import (
	"fmt"
	"strings"

	"github.com/piggymobile/piggy/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values. Negative values are
// shifted so the lowest point maps to the lowest block.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := min(values[0], 0), values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(blocks)-1))
		idx = min(max(idx, 0), len(blocks)-1)
		buf.WriteRune(blocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Render(buf.String())
}

// Bar is one row of an HBarChart.
type Bar struct {
	Label string
	Value float64
	Text  string // printed after the bar
}

// HBarChart renders labelled horizontal bars scaled to the largest value.
func HBarChart(bars []Bar, color lipgloss.Color, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW := 0
	peak := 0.0
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		peak = max(peak, b.Value)
	}
	if peak == 0 {
		peak = 1
	}

	textW := 0
	for _, b := range bars {
		textW = max(textW, lipgloss.Width(b.Text))
	}
	barW := max(width-labelW-textW-2, 4)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	barStyle := lipgloss.NewStyle().Foreground(color)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		n := max(int(b.Value/peak*float64(barW)), 0)
		lines = append(lines, fmt.Sprintf("%s %s%s %s",
			labelStyle.Render(fmt.Sprintf("%-*s", labelW, b.Label)),
			barStyle.Render(strings.Repeat("█", n)),
			strings.Repeat(" ", barW-n),
			textStyle.Render(b.Text),
		))
	}
	return strings.Join(lines, "\n")
}

package components

import (
	"fmt"

	"github.com/piggymobile/piggy/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForSpend returns green/yellow/orange/red for a 0-100+ spend percentage.
func ColorForSpend(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct > 100:
		return t.Red
	case pct >= 80:
		return t.Orange
	case pct >= 50:
		return t.Yellow
	default:
		return t.Green
	}
}

// SpendBar renders a labelled bar for a 0-100+ percentage. The bar is
// clamped to full but the printed figure is not.
func SpendBar(label string, pct float64, labelW, barWidth int) string {
	t := theme.Active
	color := ColorForSpend(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(barWidth, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	frac := min(max(pct/100, 0), 1)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + " " +
		bar.ViewAs(frac) + " " +
		pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
}

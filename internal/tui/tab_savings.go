package tui

import (
	"fmt"
	"strings"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/tui/components"
	"github.com/piggymobile/piggy/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderSavingsTab(cw int) string {
	t := theme.Active
	idx := a.overview.Savings
	if !idx.HasData {
		return components.ContentCard("Savings index",
			lipgloss.NewStyle().Foreground(t.TextMuted).Render("Plan a budget to start tracking your savings."), cw)
	}
	m := a.money

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total income", Value: m.Format(idx.TotalIncome)},
		{Label: "Total fixed expenses", Value: m.Format(idx.TotalExpenses)},
		{Label: "Total savings", Value: m.Format(idx.TotalSavings)},
		{Label: "Savings index", Value: cli.FormatPercent(idx.SavingPercentage), Note: string(idx.Status), Color: t.ForStatus(idx.Status)},
	}, cw))
	b.WriteString("\n")

	breakdown := fmt.Sprintf("Rent %s · Utilities %s · Transport %s · Other %s",
		m.Format(idx.TotalRent), m.Format(idx.TotalUtilities), m.Format(idx.TotalTransport), m.Format(idx.TotalOther))
	b.WriteString(components.ContentCard("Fixed expenses",
		lipgloss.NewStyle().Foreground(t.TextPrimary).Render(breakdown), cw))

	if len(idx.Trend) > 0 {
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Trend", a.renderTrend(idx.Trend), cw))
	}

	if len(idx.Recommendations) > 0 {
		lines := make([]string, 0, len(idx.Recommendations))
		for _, r := range idx.Recommendations {
			lines = append(lines, "• "+r)
		}
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Recommendations",
			lipgloss.NewStyle().Foreground(t.TextPrimary).Render(strings.Join(lines, "\n")), cw))
	}
	return b.String()
}

func (a App) renderTrend(trend []model.MonthTrend) string {
	t := theme.Active
	values := make([]float64, 0, len(trend))
	parts := make([]string, 0, len(trend))
	for _, mt := range trend {
		values = append(values, mt.SavingPercentage)
		arrow, color := "", t.TextMuted
		switch mt.Direction {
		case model.TrendUp:
			arrow, color = "▲", t.Green
		case model.TrendDown:
			arrow, color = "▼", t.Red
		}
		parts = append(parts,
			lipgloss.NewStyle().Foreground(t.TextMuted).Render(cli.FormatMonth(mt.Month)+" ")+
				lipgloss.NewStyle().Foreground(color).Render(cli.FormatPercent(mt.SavingPercentage)+arrow))
	}
	return components.Sparkline(values, t.Accent) + "\n" + strings.Join(parts, "  ")
}

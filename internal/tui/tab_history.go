package tui

import (
	"fmt"
	"strings"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/pipeline"
	"github.com/piggymobile/piggy/internal/tui/components"
	"github.com/piggymobile/piggy/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderHistoryTab(cw int) string {
	t := theme.Active
	rows := a.overview.History
	if len(rows) == 0 {
		return components.ContentCard("History",
			lipgloss.NewStyle().Foreground(t.TextMuted).Render("No budgets yet."), cw)
	}

	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-16s %-14s %16s %16s %8s  %s",
		"Month", "Modality", "Income", "Balance", "Saved", "Status")))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(cellStyle.Render(fmt.Sprintf("%-16s %-14s %16s %16s %8s  ",
			cli.FormatMonth(r.Budget.Month),
			r.Budget.Modality.Label(),
			a.money.Format(r.Budget.Income),
			a.money.Format(r.Balance),
			cli.FormatPercent(r.SavingPercentage),
		)))
		b.WriteString(lipgloss.NewStyle().Foreground(t.ForLabel(r.Label)).Bold(true).Render(string(r.Label)))
		b.WriteString("\n")
	}

	counts := pipeline.HistoryCounts(rows)
	summary := fmt.Sprintf("%s %d   %s %d   %s %d",
		lipgloss.NewStyle().Foreground(t.ForLabel(model.LabelMet)).Render(string(model.LabelMet)), counts[model.LabelMet],
		lipgloss.NewStyle().Foreground(t.ForLabel(model.LabelPartial)).Render(string(model.LabelPartial)), counts[model.LabelPartial],
		lipgloss.NewStyle().Foreground(t.ForLabel(model.LabelNotMet)).Render(string(model.LabelNotMet)), counts[model.LabelNotMet],
	)

	return components.ContentCard(fmt.Sprintf("History (%d months)", len(rows)), b.String(), cw) + "\n" +
		components.ContentCard("Goals", summary, cw)
}

package tui

import (
	"fmt"
	"strings"

	"github.com/piggymobile/piggy/internal/tui/components"
	"github.com/piggymobile/piggy/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderTipsTab(cw int) string {
	t := theme.Active
	if !a.overview.HasPlan {
		return components.ContentCard("Tips",
			lipgloss.NewStyle().Foreground(t.TextMuted).Render("Tips appear once this month has a budget."), cw)
	}

	tips := a.overview.Month.Tips()
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)
	body := lipgloss.NewStyle().Foreground(t.TextPrimary).PaddingLeft(4).Width(components.CardInnerWidth(cw))

	var b strings.Builder
	for i, tip := range tips {
		if i > 0 {
			b.WriteString("\n\n")
		}
		title := lipgloss.NewStyle().Foreground(t.ForPriority(tip.Priority)).Bold(true).Render(tip.Title)
		fmt.Fprintf(&b, "%2d. %s  %s\n", i+1, title, muted.Render("["+tip.Category+" · "+tip.Priority.String()+"]"))
		b.WriteString(body.Render(tip.Message))
		if tip.PotentialSaving.IsPositive() {
			b.WriteString("\n    " + lipgloss.NewStyle().Foreground(t.Green).Render("could save "+a.money.Format(tip.PotentialSaving)))
		}
	}
	return components.ContentCard(fmt.Sprintf("Tips (%d)", len(tips)), b.String(), cw)
}

package tui

import (
	"fmt"
	"strings"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/tui/components"
	"github.com/piggymobile/piggy/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func (a App) renderStatusTab(cw int) string {
	t := theme.Active
	snap := a.overview.Month

	if !a.overview.HasPlan {
		body := fmt.Sprintf("Hi %s, you have no budget for %s yet.\n\n", a.sess.Name, cli.FormatMonth(model.MonthKey(a.now()))) +
			lipgloss.NewStyle().Foreground(t.Accent).Render("Press b to plan it.")
		return components.ContentCard("Welcome", body, cw)
	}

	dm := snap.Metrics
	m := a.money

	balanceColor := t.Green
	if dm.IsOverBudget {
		balanceColor = t.Red
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Income", Value: m.Format(dm.Income), Note: "fixed " + m.Format(dm.FixedExpenseTotal)},
		{Label: "Planned balance", Value: m.Format(dm.PlannedBalance), Note: dm.Modality.Label()},
		{Label: "Spent", Value: m.Format(dm.SpentThisMonth), Note: fmt.Sprintf("%d expenses", dm.ExpenseCount), Color: components.ColorForSpend(dm.PercentageSpent)},
		{Label: "Actual balance", Value: m.Format(dm.ActualBalance), Color: balanceColor},
	}, cw))
	b.WriteString("\n")

	limitColor := lipgloss.Color("")
	switch {
	case snap.Alert.Over:
		limitColor = t.Red
	case snap.Alert.Near:
		limitColor = t.Orange
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Days remaining", Value: fmt.Sprintf("%d of %d", dm.DaysRemaining, dm.DaysInMonth)},
		{Label: "Average per day", Value: m.Format(dm.AverageDailySpend)},
		{Label: "Suggested daily limit", Value: m.Format(dm.SuggestedDailyLimit)},
		{Label: "Spent today", Value: m.Format(snap.SpentToday), Note: fmt.Sprintf("%d expenses", len(snap.TodayExpenses)), Color: limitColor},
	}, cw))
	b.WriteString("\n")

	barW := max(components.CardInnerWidth(cw)-16, 10)
	bars := components.SpendBar("Month", dm.PercentageSpent, 6, barW) + "\n" +
		components.SpendBar("Today", todayPercent(snap.SpentToday, dm.SuggestedDailyLimit), 6, barW)
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Progress · goal: save %.0f%%", dm.Modality.GoalPercent()), bars, cw))

	if alerts := statusAlerts(dm, snap.Alert); len(alerts) > 0 {
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Alerts",
			lipgloss.NewStyle().Foreground(t.Orange).Render(strings.Join(alerts, "\n")), cw))
	}
	return b.String()
}

// todayPercent is today's spend as a share of the suggested limit. A zero
// limit with any spend reads as fully over.
func todayPercent(spent, limit decimal.Decimal) float64 {
	if !limit.IsPositive() {
		if spent.IsPositive() {
			return 100.1
		}
		return 0
	}
	return spent.Div(limit).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

func statusAlerts(dm model.DerivedMetrics, alert model.LimitAlert) []string {
	var out []string
	if dm.IsOverBudget {
		out = append(out, "You have spent more than your planned balance this month.")
	}
	switch {
	case alert.Over:
		out = append(out, "You are over today's suggested limit.")
	case alert.Near:
		out = append(out, "You are close to today's suggested limit.")
	}
	return out
}

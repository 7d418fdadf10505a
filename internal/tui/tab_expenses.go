package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/tui/components"
	"github.com/piggymobile/piggy/internal/tui/theme"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

func newExpenseTable() table.Model {
	t := theme.Active
	tbl := table.New(
		table.WithColumns(expenseColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Foreground(t.TextMuted).BorderForeground(t.Border).Bold(true)
	s.Selected = s.Selected.Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	tbl.SetStyles(s)
	return tbl
}

func expenseColumns(width int) []table.Column {
	desc := max(width-6-12-16-16-10, 12)
	return []table.Column{
		{Title: "#", Width: 6},
		{Title: "Date", Width: 12},
		{Title: "Category", Width: 16},
		{Title: "Amount", Width: 16},
		{Title: "Description", Width: desc},
	}
}

func expenseRows(expenses []model.ExpenseRecord, m *cli.Money) []table.Row {
	rows := make([]table.Row, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, table.Row{
			strconv.FormatInt(e.ID, 10),
			e.Date,
			e.Category.Label(),
			m.Format(e.Amount),
			e.Description,
		})
	}
	return rows
}

func (a *App) resizeTable() {
	cw := a.contentWidth()
	a.expenses.SetColumns(expenseColumns(components.CardInnerWidth(cw)))
	a.expenses.SetWidth(components.CardInnerWidth(cw))
	a.expenses.SetHeight(max(a.height-18, 5))
}

func (a App) renderExpensesTab(cw, h int) string {
	t := theme.Active
	var b strings.Builder

	title := fmt.Sprintf("Recent expenses (%d)", len(a.recent))
	if len(a.recent) == 0 {
		b.WriteString(components.ContentCard(title,
			lipgloss.NewStyle().Foreground(t.TextMuted).Render("Nothing logged yet. Press a to add an expense."), cw))
	} else {
		hint := lipgloss.NewStyle().Foreground(t.TextDim).Render("j/k move · d delete · a add")
		b.WriteString(components.ContentCard(title, a.expenses.View()+"\n"+hint, cw))
	}

	totals := a.overview.Month.CategoryTotals
	if len(totals) > 0 && h > lipgloss.Height(b.String())+4 {
		bars := make([]components.Bar, 0, len(totals))
		for _, ct := range totals {
			bars = append(bars, components.Bar{
				Label: ct.Category.Label(),
				Value: ct.Total.InexactFloat64(),
				Text:  fmt.Sprintf("%s (%d)", a.money.Format(ct.Total), ct.Count),
			})
		}
		b.WriteString("\n")
		b.WriteString(components.ContentCard("This month by category",
			components.HBarChart(bars, t.Accent, components.CardInnerWidth(cw)), cw))
	}
	return b.String()
}

package pipeline

import (
	"github.com/piggymobile/piggy/internal/model"

	"github.com/shopspring/decimal"
)

// ComputeProfile totals every planned month and the recent expense log.
// SavingPercentage is zero when no income was planned.
func ComputeProfile(budgets []model.BudgetRecord, recent []model.ExpenseRecord) model.ProfileStats {
	p := model.ProfileStats{
		MonthsPlanned:       len(budgets),
		TotalIncome:         decimal.Zero,
		TotalFixedExpenses:  decimal.Zero,
		RecentExpenseCount:  len(recent),
		RecentExpensesTotal: decimal.Zero,
	}
	for _, b := range budgets {
		p.TotalIncome = p.TotalIncome.Add(b.Income)
		p.TotalFixedExpenses = p.TotalFixedExpenses.Add(b.FixedExpenses())
	}
	for _, e := range recent {
		p.RecentExpensesTotal = p.RecentExpensesTotal.Add(e.Amount)
	}
	p.PlannedSavings = p.TotalIncome.Sub(p.TotalFixedExpenses)
	p.SavingPercentage = percentOf(p.PlannedSavings, p.TotalIncome)
	return p
}

// Package pipeline computes derived budget metrics, history labels and tips
// from snapshots of the record store.
package pipeline

import (
	"time"

	"github.com/piggymobile/piggy/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeMonthlyStatus derives the month's balances, pace and daily limit
// from a budget and the expenses dated within its month. It never fails:
// every division by zero yields zero.
func ComputeMonthlyStatus(b model.BudgetRecord, expenses []model.ExpenseRecord, today time.Time) model.DerivedMetrics {
	m := model.DerivedMetrics{
		Month:    b.Month,
		Modality: b.Modality,
		Income:   b.Income,
	}

	m.FixedExpenseTotal = b.FixedExpenses()
	m.PlannedBalance = b.Income.Sub(m.FixedExpenseTotal)

	m.SpentThisMonth = decimal.Zero
	for _, e := range expenses {
		m.SpentThisMonth = m.SpentThisMonth.Add(e.Amount)
	}
	m.ExpenseCount = len(expenses)

	m.ActualBalance = m.PlannedBalance.Sub(m.SpentThisMonth)
	m.IsOverBudget = m.ActualBalance.IsNegative()

	if m.PlannedBalance.IsPositive() {
		m.PercentageSpent = m.SpentThisMonth.Div(m.PlannedBalance).Mul(hundred).InexactFloat64()
	}

	m.DaysInMonth, m.DaysElapsed = monthProgress(b.Month, today)
	m.DaysRemaining = max(m.DaysInMonth-m.DaysElapsed, 0)

	m.AverageDailySpend = decimal.Zero
	if m.DaysElapsed > 0 {
		m.AverageDailySpend = m.SpentThisMonth.Div(decimal.NewFromInt(int64(m.DaysElapsed)))
	}

	m.SuggestedDailyLimit = decimal.Zero
	if m.DaysRemaining > 0 && m.ActualBalance.IsPositive() {
		m.SuggestedDailyLimit = m.ActualBalance.Div(decimal.NewFromInt(int64(m.DaysRemaining)))
	}

	return m
}

// monthProgress returns the month length and days elapsed as of today.
// A today before the month counts zero days; after it, the whole month.
func monthProgress(month string, today time.Time) (daysInMonth, elapsed int) {
	first, err := model.ParseMonth(month)
	if err != nil {
		first = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	daysInMonth = model.DaysIn(first)

	todayKey := model.MonthKey(today)
	monthKey := model.MonthKey(first)
	switch {
	case todayKey < monthKey:
		return daysInMonth, 0
	case todayKey > monthKey:
		return daysInMonth, daysInMonth
	default:
		return daysInMonth, min(today.Day(), daysInMonth)
	}
}

package pipeline

import (
	"fmt"
	"sort"

	"github.com/piggymobile/piggy/internal/model"

	"github.com/shopspring/decimal"
)

// ComputeSavingsIndex aggregates every budget a user has stored into a
// savings summary with a month-by-month trend and recommendations.
func ComputeSavingsIndex(budgets []model.BudgetRecord) model.SavingsIndexSummary {
	s := model.SavingsIndexSummary{
		TotalIncome:    decimal.Zero,
		TotalRent:      decimal.Zero,
		TotalUtilities: decimal.Zero,
		TotalTransport: decimal.Zero,
		TotalOther:     decimal.Zero,
		TotalExpenses:  decimal.Zero,
		TotalSavings:   decimal.Zero,
		Status:         model.StatusNoData,
	}
	if len(budgets) == 0 {
		return s
	}
	s.HasData = true

	for _, b := range budgets {
		s.TotalIncome = s.TotalIncome.Add(b.Income)
		s.TotalRent = s.TotalRent.Add(b.Rent)
		s.TotalUtilities = s.TotalUtilities.Add(b.Utilities)
		s.TotalTransport = s.TotalTransport.Add(b.Transport)
		s.TotalOther = s.TotalOther.Add(b.Other)
	}
	s.TotalExpenses = s.TotalRent.Add(s.TotalUtilities).Add(s.TotalTransport).Add(s.TotalOther)
	s.TotalSavings = s.TotalIncome.Sub(s.TotalExpenses)
	s.SavingPercentage = percentOf(s.TotalSavings, s.TotalIncome)
	s.Status = SavingStatusFor(s.SavingPercentage)

	s.Trend = savingsTrend(budgets)
	s.Recommendations = recommendations(s)
	return s
}

// SavingStatusFor maps an aggregate saving percentage to its label.
func SavingStatusFor(pct float64) model.SavingStatus {
	switch {
	case pct >= 30:
		return model.StatusExcellent
	case pct >= 20:
		return model.StatusVeryGood
	case pct >= 10:
		return model.StatusGood
	case pct >= 5:
		return model.StatusFair
	default:
		return model.StatusLow
	}
}

func savingsTrend(budgets []model.BudgetRecord) []model.MonthTrend {
	sorted := make([]model.BudgetRecord, len(budgets))
	copy(sorted, budgets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Month < sorted[j].Month
	})

	trend := make([]model.MonthTrend, 0, len(sorted))
	for i, b := range sorted {
		pct := percentOf(b.Balance(), b.Income)
		dir := model.TrendUp
		if i > 0 && pct < trend[i-1].SavingPercentage {
			dir = model.TrendDown
		}
		trend = append(trend, model.MonthTrend{
			Month:            b.Month,
			SavingPercentage: pct,
			Direction:        dir,
		})
	}
	return trend
}

func recommendations(s model.SavingsIndexSummary) []string {
	var recs []string

	if s.SavingPercentage < 10 {
		recs = append(recs, "Your savings index is below 10%. Try cutting unnecessary expenses.")
	}
	if rent := percentOf(s.TotalRent, s.TotalIncome); rent > 30 {
		recs = append(recs, fmt.Sprintf("Rent takes %d%% of your income. Ideally keep it under 30%%.", int(rent)))
	}
	if transport := percentOf(s.TotalTransport, s.TotalIncome); transport > 15 {
		recs = append(recs, fmt.Sprintf("You spend a lot on transport (%d%%). Consider cheaper options.", int(transport)))
	}
	if other := percentOf(s.TotalOther, s.TotalIncome); other > 20 {
		recs = append(recs, fmt.Sprintf("Other expenses are %d%% of your income. Look for ant expenses.", int(other)))
	}
	if s.SavingPercentage >= 20 {
		recs = append(recs, "Great work! You are saving more than 20% of your income.")
	}

	if len(recs) == 0 {
		recs = append(recs, "Your budget is well balanced. Keep it up.")
	}
	return recs
}

// percentOf returns part/whole*100, or 0 when whole is not positive.
func percentOf(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}

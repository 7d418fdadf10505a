package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/piggymobile/piggy/internal/model"

	"github.com/shopspring/decimal"
)

// benchExpenses builds n expenses spread over June 2024 and all categories.
func benchExpenses(n int) []model.ExpenseRecord {
	cats := model.Categories
	out := make([]model.ExpenseRecord, 0, n)
	for i := range n {
		out = append(out, model.ExpenseRecord{
			ID:       int64(i + 1),
			Date:     fmt.Sprintf("2024-06-%02d", i%30+1),
			Category: cats[i%len(cats)],
			Amount:   decimal.New(int64(100+i%900), -2),
		})
	}
	return out
}

func BenchmarkComputeMonthlyStatus(b *testing.B) {
	budget := sampleBudget()
	expenses := benchExpenses(5000)
	today := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ComputeMonthlyStatus(budget, expenses, today)
	}
}

func BenchmarkGenerateTips(b *testing.B) {
	budget := sampleBudget()
	totals := CategoryTotals(benchExpenses(5000))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GenerateTips(budget, totals)
	}
}

func BenchmarkAggregateDays(b *testing.B) {
	expenses := benchExpenses(5000)
	today := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AggregateDays(expenses, "2024-06", today)
	}
}

func BenchmarkComputeSavingsIndex(b *testing.B) {
	budgets := make([]model.BudgetRecord, 0, 120)
	for i := range 120 {
		month := fmt.Sprintf("%04d-%02d", 2014+i/12, i%12+1)
		budgets = append(budgets, budgetWith(month, "7000", fmt.Sprint(3000+i*10), model.Balanced))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ComputeSavingsIndex(budgets)
	}
}

package pipeline

import (
	"testing"

	"github.com/piggymobile/piggy/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(tips []model.Tip) []string {
	out := make([]string, len(tips))
	for i, tip := range tips {
		out[i] = tip.Title
	}
	return out
}

func findTip(tips []model.Tip, title string) (model.Tip, bool) {
	for _, tip := range tips {
		if tip.Title == title {
			return tip, true
		}
	}
	return model.Tip{}, false
}

func assertOrdered(t *testing.T, tips []model.Tip) {
	t.Helper()
	for i := 1; i < len(tips); i++ {
		prev, cur := tips[i-1], tips[i]
		if prev.Priority == cur.Priority {
			assert.False(t, cur.PotentialSaving.GreaterThan(prev.PotentialSaving),
				"%q (%s) sorted after %q (%s)", cur.Title, cur.PotentialSaving, prev.Title, prev.PotentialSaving)
		} else {
			assert.Less(t, prev.Priority, cur.Priority, "%q before %q", prev.Title, cur.Title)
		}
	}
}

func TestCategoryTotals(t *testing.T) {
	totals := CategoryTotals([]model.ExpenseRecord{
		expense("2024-06-01", model.Health, "100"),
		expense("2024-06-01", model.Food, "200"),
		expense("2024-06-02", model.Food, "300"),
		expense("2024-06-03", model.Entertainment, "100"),
	})
	require.Len(t, totals, 3)
	assert.Equal(t, model.Food, totals[0].Category)
	assertDec(t, "500", totals[0].Total)
	assert.Equal(t, 2, totals[0].Count)
	// Ties break on category name.
	assert.Equal(t, model.Entertainment, totals[1].Category)
	assert.Equal(t, model.Health, totals[2].Category)

	assert.Empty(t, CategoryTotals(nil))
}

func TestGenerateTipsBalanced(t *testing.T) {
	totals := CategoryTotals([]model.ExpenseRecord{
		expense("2024-06-01", model.Food, "500"),
		expense("2024-06-02", model.Transport, "300"),
		expense("2024-06-03", model.Entertainment, "100"),
		expense("2024-06-04", model.Health, "100"),
	})
	tips := GenerateTips(sampleBudget(), totals)

	assert.Equal(t, []string{
		"Food is your largest expense",
		"Find your ant expenses",
		"Cook at home",
		"Shopping list",
		"Review subscriptions",
		"Transport",
		"Balanced mode",
		"One-week challenge",
		"Avoid impulse purchases",
		"Save on utilities",
		"Use discount apps",
		"Visualize your goal",
		"Envelope method",
	}, titles(tips))
	assertOrdered(t, tips)

	food, _ := findTip(tips, "Food is your largest expense")
	assert.Equal(t, model.PriorityHigh, food.Priority)
	assert.Equal(t, "FOOD", food.Category)
	assertDec(t, "150", food.PotentialSaving)
	assert.Contains(t, food.Message, "500")
	assert.Contains(t, food.Message, "50%")

	transport, _ := findTip(tips, "Transport")
	assertDec(t, "60", transport.PotentialSaving)

	// Health was fourth by total and so gets no tip.
	_, ok := findTip(tips, "Health")
	assert.False(t, ok)
}

func TestGenerateTipsAggressiveTruncates(t *testing.T) {
	b := model.BudgetRecord{
		Month: "2024-06", Income: d("1000"), Rent: d("400"), Utilities: d("0"),
		Transport: d("200"), Other: d("310"), Modality: model.Aggressive,
	}
	totals := CategoryTotals([]model.ExpenseRecord{
		expense("2024-06-01", model.Other, "400"),
		expense("2024-06-02", model.Services, "150"),
		expense("2024-06-03", model.Health, "50"),
	})
	tips := GenerateTips(b, totals)

	require.Len(t, tips, MaxTips)
	assertOrdered(t, tips)

	for _, title := range []string{
		"Ant expenses detected", "Aggressive mode", "Aggressive mode alert",
		"Low savings alert", "High rent", "Services", "High fixed transport",
	} {
		_, ok := findTip(tips, title)
		assert.True(t, ok, "missing %q in %v", title, titles(tips))
	}

	other, _ := findTip(tips, "Ant expenses detected")
	assertDec(t, "160", other.PotentialSaving)
	rent, _ := findTip(tips, "High rent")
	assertDec(t, "150", rent.PotentialSaving)
	assert.Equal(t, model.PriorityMedium, rent.Priority)
	fixedTransport, _ := findTip(tips, "High fixed transport")
	assertDec(t, "60", fixedTransport.PotentialSaving)
	assert.Equal(t, model.PriorityLow, fixedTransport.Priority)
	alert, _ := findTip(tips, "Aggressive mode alert")
	assert.Contains(t, alert.Message, "600")
	assert.Contains(t, alert.Message, "150")

	// The lowest ranked LOW tips fall off the end.
	for _, title := range []string{"Health", "Visualize your goal", "Envelope method"} {
		_, ok := findTip(tips, title)
		assert.False(t, ok, "%q should have been truncated", title)
	}
}

func TestGenerateTipsBalancedLowSavings(t *testing.T) {
	b := budgetWith("2024-06", "1000", "950", model.Balanced)
	tips := GenerateTips(b, nil)

	improve, ok := findTip(tips, "Improve your savings")
	require.True(t, ok)
	assertDec(t, "100", improve.PotentialSaving)
	assert.Equal(t, model.PriorityMedium, improve.Priority)

	low, ok := findTip(tips, "Low savings alert")
	require.True(t, ok)
	assert.Equal(t, model.PriorityHigh, low.Priority)
	assert.Equal(t, "Low savings alert", tips[0].Title)
}

func TestGenerateTipsContingency(t *testing.T) {
	b := model.BudgetRecord{
		Month: "2024-06", Income: d("1000"), Rent: d("200"), Utilities: d("0"),
		Transport: d("0"), Other: d("0"), Modality: model.Contingency,
	}
	tips := GenerateTips(b, nil)
	fund, ok := findTip(tips, "Emergency fund")
	require.True(t, ok)
	assert.Equal(t, model.PriorityHigh, fund.Priority)
	assert.Contains(t, fund.Message, "200")
	assert.Contains(t, fund.Message, "67")
}

func TestGenerateTipsEmptyTotals(t *testing.T) {
	tips := GenerateTips(sampleBudget(), nil)
	for _, tip := range tips {
		assert.Contains(t, []string{TipModality, TipBudget, TipGeneral}, tip.Category)
	}
	impulse, ok := findTip(tips, "Avoid impulse purchases")
	require.True(t, ok)
	assertDec(t, "0", impulse.PotentialSaving)
}

func TestGenerateTipsUnknownModality(t *testing.T) {
	b := sampleBudget()
	b.Modality = "LEGACY"
	tips := GenerateTips(b, nil)
	for _, tip := range tips {
		assert.NotEqual(t, TipModality, tip.Category)
	}
}

func TestCategoryTipThresholds(t *testing.T) {
	// Shares are against 1000 of variable spending, so an amount of 400 is 40%.
	tests := []struct {
		name     string
		category model.Category
		amount   string
		title    string // empty means no tip
		priority model.Priority
		saving   string
	}{
		{"food above 40", model.Food, "401", "Food is your largest expense", model.PriorityHigh, "120.3"},
		{"food exactly 40", model.Food, "400", "Food", model.PriorityMedium, "100"},
		{"food above 25", model.Food, "251", "Food", model.PriorityMedium, "62.75"},
		{"food exactly 25", model.Food, "250", "", 0, ""},
		{"transport above 30", model.Transport, "301", "Transport spending is high", model.PriorityHigh, "120.4"},
		{"transport exactly 30", model.Transport, "300", "Transport", model.PriorityMedium, "60"},
		{"transport above 20", model.Transport, "201", "Transport", model.PriorityMedium, "40.2"},
		{"transport exactly 20", model.Transport, "200", "", 0, ""},
		{"entertainment above 25", model.Entertainment, "251", "Entertainment spending is high", model.PriorityHigh, "125.5"},
		{"entertainment exactly 25", model.Entertainment, "250", "Entertainment", model.PriorityMedium, "75"},
		{"entertainment above 15", model.Entertainment, "151", "Entertainment", model.PriorityMedium, "45.3"},
		{"entertainment exactly 15", model.Entertainment, "150", "", 0, ""},
		{"services above 20", model.Services, "201", "Services", model.PriorityMedium, "115"},
		{"services exactly 20", model.Services, "200", "", 0, ""},
		{"other above 30", model.Other, "301", "Ant expenses detected", model.PriorityHigh, "120.4"},
		{"other exactly 30", model.Other, "300", "", 0, ""},
		{"health any share", model.Health, "10", "Health", model.PriorityLow, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := []model.CategoryTotal{{Category: tt.category, Total: d(tt.amount), Count: 1}}
			tips := categoryTips(totals, d("1000"))
			if tt.title == "" {
				assert.Empty(t, tips)
				return
			}
			require.Len(t, tips, 1)
			assert.Equal(t, tt.title, tips[0].Title)
			assert.Equal(t, string(tt.category), tips[0].Category)
			assert.Equal(t, tt.priority, tips[0].Priority)
			assertDec(t, tt.saving, tips[0].PotentialSaving)
		})
	}
}

func TestCategoryTipsTopThreeOnly(t *testing.T) {
	totals := []model.CategoryTotal{
		{Category: model.Health, Total: d("50")},
		{Category: model.Food, Total: d("500")},
		{Category: model.Transport, Total: d("250")},
		{Category: model.Entertainment, Total: d("200")},
	}
	tips := categoryTips(totals, d("1000"))
	assert.Equal(t, []string{"Food is your largest expense", "Transport", "Entertainment"}, titles(tips))
}

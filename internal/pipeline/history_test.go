package pipeline

import (
	"testing"

	"github.com/piggymobile/piggy/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func budgetWith(month string, income, fixed string, m model.Modality) model.BudgetRecord {
	return model.BudgetRecord{
		Month:     month,
		Income:    d(income),
		Rent:      d(fixed),
		Utilities: d("0"),
		Transport: d("0"),
		Other:     d("0"),
		Modality:  m,
	}
}

func TestClassifyThresholds(t *testing.T) {
	tests := []struct {
		name     string
		modality model.Modality
		fixed    string // of 1000 income
		want     model.HistoryLabel
	}{
		{"aggressive met", model.Aggressive, "700", model.LabelMet},
		{"aggressive partial", model.Aggressive, "850", model.LabelPartial},
		{"aggressive not met", model.Aggressive, "851", model.LabelNotMet},
		{"balanced met", model.Balanced, "850", model.LabelMet},
		{"balanced partial", model.Balanced, "920", model.LabelPartial},
		{"balanced not met", model.Balanced, "921", model.LabelNotMet},
		{"contingency met", model.Contingency, "800", model.LabelMet},
		{"contingency partial", model.Contingency, "900", model.LabelPartial},
		{"contingency not met", model.Contingency, "950", model.LabelNotMet},
		{"unknown met", model.Modality("LEGACY"), "900", model.LabelMet},
		{"unknown partial", model.Modality("LEGACY"), "1500", model.LabelPartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(budgetWith("2024-01", "1000", tt.fixed, tt.modality)))
		})
	}
}

func TestClassifyScenarioAggressivePartial(t *testing.T) {
	b := budgetWith("2024-01", "7000", "5600", model.Aggressive)
	assert.Equal(t, model.LabelPartial, Classify(b))
}

func TestClassifyZeroIncomeIsPartial(t *testing.T) {
	for _, m := range append(model.Modalities, model.Modality("")) {
		assert.Equal(t, model.LabelPartial, Classify(budgetWith("2024-01", "0", "0", m)), "modality %q", m)
		assert.Equal(t, model.LabelPartial, Classify(budgetWith("2024-01", "0", "500", m)), "modality %q", m)
	}
}

func TestClassifyIsTotal(t *testing.T) {
	valid := map[model.HistoryLabel]bool{model.LabelMet: true, model.LabelPartial: true, model.LabelNotMet: true}
	modalities := append(model.Modalities, model.Modality("???"))
	for _, m := range modalities {
		for _, fixed := range []string{"0", "1", "500", "999", "1000", "5000", "1000000"} {
			got := Classify(budgetWith("2024-01", "1000", fixed, m))
			assert.True(t, valid[got], "modality %s fixed %s gave %q", m, fixed, got)
		}
	}
}

func TestHistoryRows(t *testing.T) {
	budgets := []model.BudgetRecord{
		budgetWith("2024-03", "1000", "600", model.Aggressive),
		budgetWith("2024-02", "1000", "900", model.Balanced),
	}
	rows := HistoryRows(budgets)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-03", rows[0].Budget.Month)
	assertDec(t, "400", rows[0].Balance)
	assert.InDelta(t, 40, rows[0].SavingPercentage, 1e-9)
	assert.Equal(t, model.LabelMet, rows[0].Label)
	assert.Equal(t, model.LabelPartial, rows[1].Label)

	counts := HistoryCounts(rows)
	assert.Equal(t, 1, counts[model.LabelMet])
	assert.Equal(t, 1, counts[model.LabelPartial])
	assert.Equal(t, 0, counts[model.LabelNotMet])
}

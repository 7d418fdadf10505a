package pipeline

import "github.com/piggymobile/piggy/internal/model"

// thresholds are the Met and Partial floors, in percent saved.
type thresholds struct{ met, partial float64 }

func thresholdsFor(m model.Modality) (thresholds, bool) {
	switch m {
	case model.Aggressive:
		return thresholds{met: 30, partial: 15}, true
	case model.Balanced:
		return thresholds{met: 15, partial: 8}, true
	case model.Contingency:
		return thresholds{met: 20, partial: 10}, true
	default:
		return thresholds{}, false
	}
}

// Classify labels how well a month's budget met its modality's savings goal.
// A month without income cannot be judged and is always Partial.
func Classify(b model.BudgetRecord) model.HistoryLabel {
	if !b.Income.IsPositive() {
		return model.LabelPartial
	}
	saved := percentOf(b.Balance(), b.Income)

	t, ok := thresholdsFor(b.Modality)
	if !ok {
		if saved >= 10 {
			return model.LabelMet
		}
		return model.LabelPartial
	}

	switch {
	case saved >= t.met:
		return model.LabelMet
	case saved >= t.partial:
		return model.LabelPartial
	default:
		return model.LabelNotMet
	}
}

// HistoryRows classifies each budget, preserving input order.
func HistoryRows(budgets []model.BudgetRecord) []model.HistoryRow {
	rows := make([]model.HistoryRow, 0, len(budgets))
	for _, b := range budgets {
		rows = append(rows, model.HistoryRow{
			Budget:           b,
			Balance:          b.Balance(),
			SavingPercentage: percentOf(b.Balance(), b.Income),
			Label:            Classify(b),
		})
	}
	return rows
}

// HistoryCounts tallies labels across rows.
func HistoryCounts(rows []model.HistoryRow) map[model.HistoryLabel]int {
	counts := map[model.HistoryLabel]int{
		model.LabelMet:     0,
		model.LabelPartial: 0,
		model.LabelNotMet:  0,
	}
	for _, r := range rows {
		counts[r.Label]++
	}
	return counts
}

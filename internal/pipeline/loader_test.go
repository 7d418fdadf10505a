package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	budgets  []model.BudgetRecord
	expenses []model.ExpenseRecord
	err      error
}

func (f *fakeReader) BudgetForMonth(_ context.Context, userID, month string) (model.BudgetRecord, bool, error) {
	if f.err != nil {
		return model.BudgetRecord{}, false, f.err
	}
	for _, b := range f.budgets {
		if b.UserID == userID && b.Month == month {
			return b, true, nil
		}
	}
	return model.BudgetRecord{}, false, nil
}

func (f *fakeReader) BudgetsForUser(_ context.Context, userID string) ([]model.BudgetRecord, error) {
	var out []model.BudgetRecord
	for _, b := range f.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, f.err
}

func (f *fakeReader) ExpensesInRange(_ context.Context, userID, start, end string) ([]model.ExpenseRecord, error) {
	var out []model.ExpenseRecord
	for _, e := range f.expenses {
		if e.UserID == userID && e.Date >= start && e.Date <= end {
			out = append(out, e)
		}
	}
	return out, f.err
}

var session = config.Session{UserID: "u1"}

func TestLoadMonth(t *testing.T) {
	r := &fakeReader{
		budgets: []model.BudgetRecord{sampleBudget()},
		expenses: []model.ExpenseRecord{
			expense("2024-05-31", model.Food, "999"), // previous month
			expense("2024-06-01", model.Food, "100"),
			expense("2024-06-15", model.Transport, "150"),
			expense("2024-06-15", model.Food, "20"),
		},
	}
	snap, found, err := LoadMonth(context.Background(), r, session, mustDate(t, "2024-06-15"))
	require.NoError(t, err)
	require.True(t, found)

	assert.Len(t, snap.Expenses, 3)
	assert.Len(t, snap.TodayExpenses, 2)
	assertDec(t, "170", snap.SpentToday)
	assertDec(t, "270", snap.Metrics.SpentThisMonth)
	// (3100-270)/15 = 188.67; 170 is above 80% of that.
	assertDec(t, "188.67", snap.Metrics.SuggestedDailyLimit)
	assert.Equal(t, model.LimitAlert{Near: true, Over: false}, snap.Alert)
	require.Len(t, snap.CategoryTotals, 2)
	assert.Equal(t, model.Transport, snap.CategoryTotals[0].Category)
	assert.NotEmpty(t, snap.Tips())
}

func TestLoadMonthWithoutBudget(t *testing.T) {
	snap, found, err := LoadMonth(context.Background(), &fakeReader{}, session, mustDate(t, "2024-06-15"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, model.LimitAlert{}, snap.Alert)
}

func TestLoadersRequireSession(t *testing.T) {
	_, _, err := LoadMonth(context.Background(), &fakeReader{}, config.Session{}, mustDate(t, "2024-06-15"))
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = LoadHistory(context.Background(), &fakeReader{}, config.Session{})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLoadMonthPropagatesErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	_, _, err := LoadMonth(context.Background(), &fakeReader{err: boom}, session, mustDate(t, "2024-06-15"))
	assert.ErrorIs(t, err, boom)
}

func TestLoadOverview(t *testing.T) {
	older := sampleBudget()
	older.Month = "2024-05"
	r := &fakeReader{budgets: []model.BudgetRecord{sampleBudget(), older}}

	ov, err := LoadOverview(context.Background(), r, session, mustDate(t, "2024-07-02"))
	require.NoError(t, err)
	assert.False(t, ov.HasPlan)
	assert.Len(t, ov.History, 2)
	assert.True(t, ov.Savings.HasData)
}

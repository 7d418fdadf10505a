package tui

import (
	"testing"

	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetValuesRoundTrip(t *testing.T) {
	rec := model.BudgetRecord{
		ID:       4,
		Month:    "2024-06",
		Income:   dec("7000"),
		Rent:     dec("3900"),
		Modality: model.Contingency,
	}
	vals := NewBudgetValues(rec)
	assert.Equal(t, "0", vals.Utilities)

	in, err := vals.Input()
	require.NoError(t, err)
	assert.True(t, in.Income.Equal(dec("7000")))
	assert.Equal(t, "CONTINGENCY", in.Modality)
}

func TestBudgetValuesDefaults(t *testing.T) {
	vals := NewBudgetValues(model.BudgetRecord{Month: "2024-07"})
	assert.Equal(t, string(model.Balanced), vals.Modality)
	assert.Empty(t, vals.Income)

	vals.Income = "4000"
	vals.Rent = ""
	in, err := vals.Input()
	require.NoError(t, err)
	assert.True(t, in.Rent.IsZero())
}

func TestBudgetValuesRejectsBadAmount(t *testing.T) {
	vals := NewBudgetValues(model.BudgetRecord{Month: "2024-07"})
	vals.Income = "4000"
	vals.Transport = "abc"

	_, err := vals.Input()
	assert.ErrorContains(t, err, "transport")
}

func TestExpenseValuesInput(t *testing.T) {
	in, err := ExpenseValues{Date: "2024-06-15", Category: "FOOD", Amount: "12.5", Description: "  lunch "}.Input()
	require.NoError(t, err)
	assert.Equal(t, "lunch", in.Description)

	_, err = ExpenseValues{Date: "15/06/2024", Category: "FOOD", Amount: "12.5"}.Input()
	assert.Error(t, err)
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := NewSetupValues(cfg)
	assert.Equal(t, cfg.General.Currency, vals.Currency)

	vals.Currency = " usd "
	vals.Locale = ""
	vals.Theme = "tokyo-night"
	vals.Reminder = false
	vals.Apply(&cfg)

	assert.Equal(t, "USD", cfg.General.Currency)
	assert.Equal(t, "es-GT", cfg.General.Locale)
	assert.Equal(t, "tokyo-night", cfg.Appearance.Theme)
	assert.False(t, cfg.Reminder.Enabled)
}

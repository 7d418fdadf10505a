package pipeline

import (
	"testing"

	"github.com/piggymobile/piggy/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateDaysFillsGaps(t *testing.T) {
	expenses := []model.ExpenseRecord{
		expense("2024-06-03", model.Food, "10"),
		expense("2024-06-03", model.Transport, "5.50"),
		expense("2024-06-01", model.Other, "2"),
		expense("2024-05-31", model.Food, "99"), // other month
	}

	days := AggregateDays(expenses, "2024-06", mustDate(t, "2024-06-04"))

	require.Len(t, days, 4)
	assert.Equal(t, "2024-06-04", days[0].Date)
	assert.True(t, days[0].Total.IsZero())
	assert.Equal(t, "2024-06-03", days[1].Date)
	assertDec(t, "15.50", days[1].Total)
	assert.Equal(t, 2, days[1].Count)
	assert.Equal(t, "2024-06-01", days[3].Date)
}

func TestAggregateDaysPastAndFutureMonths(t *testing.T) {
	past := AggregateDays(nil, "2024-02", mustDate(t, "2024-06-04"))
	assert.Len(t, past, 29)
	assert.Equal(t, "2024-02-29", past[0].Date)

	future := AggregateDays([]model.ExpenseRecord{expense("2024-07-02", model.Food, "1")}, "2024-07", mustDate(t, "2024-06-04"))
	require.Len(t, future, 1)
	assert.Equal(t, "2024-07-02", future[0].Date)
}

func TestAggregateDaysBadMonth(t *testing.T) {
	assert.Nil(t, AggregateDays(nil, "June", mustDate(t, "2024-06-04")))
}

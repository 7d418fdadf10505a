package pipeline

import (
	"sort"
	"time"

	"github.com/piggymobile/piggy/internal/model"

	"github.com/shopspring/decimal"
)

// AggregateDays totals expenses per day of month. Every day from the 1st up
// to today (or the month's last day for past months) is present, with zeros
// for days without expenses. Future months only list logged days. Most
// recent first.
func AggregateDays(expenses []model.ExpenseRecord, month string, today time.Time) []model.DailySpend {
	first, err := model.ParseMonth(month)
	if err != nil {
		return nil
	}

	dayMap := make(map[string]*model.DailySpend)
	for _, e := range expenses {
		if len(e.Date) < 7 || e.Date[:7] != month {
			continue
		}
		ds, ok := dayMap[e.Date]
		if !ok {
			ds = &model.DailySpend{Date: e.Date, Total: decimal.Zero}
			dayMap[e.Date] = ds
		}
		ds.Total = ds.Total.Add(e.Amount)
		ds.Count++
	}

	// Fill in every day in the range so gaps show as zeros
	_, elapsed := monthProgress(month, today)
	for d := range elapsed {
		key := model.DateKey(first.AddDate(0, 0, d))
		if _, ok := dayMap[key]; !ok {
			dayMap[key] = &model.DailySpend{Date: key, Total: decimal.Zero}
		}
	}

	days := make([]model.DailySpend, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date > days[j].Date
	})
	return days
}

package model

import (
	"fmt"
	"time"
)

// Layouts for the month and day keys stored on records.
const (
	MonthLayout = "2006-01"
	DateLayout  = "2006-01-02"
)

// MonthKey formats t as "YYYY-MM".
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// DateKey formats t as "YYYY-MM-DD".
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseMonth parses a "YYYY-MM" key into the first day of that month (UTC).
func ParseMonth(key string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", key, err)
	}
	return t, nil
}

// DaysIn returns the number of days in the month starting at first.
func DaysIn(first time.Time) int {
	return time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthBounds returns the first and last date keys of the month.
func MonthBounds(key string) (start, end string, err error) {
	first, err := ParseMonth(key)
	if err != nil {
		return "", "", err
	}
	last := first.AddDate(0, 1, -1)
	return DateKey(first), DateKey(last), nil
}

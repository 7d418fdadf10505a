package model

import "github.com/shopspring/decimal"

// DerivedMetrics holds the monthly status computed from a budget and its expenses.
type DerivedMetrics struct {
	Month    string
	Modality Modality

	Income            decimal.Decimal
	FixedExpenseTotal decimal.Decimal
	PlannedBalance    decimal.Decimal
	SpentThisMonth    decimal.Decimal
	ExpenseCount      int
	ActualBalance     decimal.Decimal

	PercentageSpent float64 // not clamped; may exceed 100
	IsOverBudget    bool

	DaysInMonth   int
	DaysElapsed   int
	DaysRemaining int

	AverageDailySpend   decimal.Decimal
	SuggestedDailyLimit decimal.Decimal
}

// SavingStatus is the five-level label for an aggregate saving percentage.
type SavingStatus string

// Saving status levels.
const (
	StatusExcellent SavingStatus = "Excellent"
	StatusVeryGood  SavingStatus = "Very good"
	StatusGood      SavingStatus = "Good"
	StatusFair      SavingStatus = "Fair"
	StatusLow       SavingStatus = "Low"
	StatusNoData    SavingStatus = "No data"
)

// Trend directions for MonthTrend.
const (
	TrendUp   = "up"
	TrendDown = "down"
)

// MonthTrend is one month's own saving percentage and its direction vs the previous month.
type MonthTrend struct {
	Month            string
	SavingPercentage float64
	Direction        string
}

// SavingsIndexSummary aggregates every stored budget for a user.
type SavingsIndexSummary struct {
	HasData bool

	TotalIncome      decimal.Decimal
	TotalRent        decimal.Decimal
	TotalUtilities   decimal.Decimal
	TotalTransport   decimal.Decimal
	TotalOther       decimal.Decimal
	TotalExpenses    decimal.Decimal
	TotalSavings     decimal.Decimal
	SavingPercentage float64
	Status           SavingStatus

	Trend           []MonthTrend
	Recommendations []string
}

// Priority ranks a tip.
type Priority int

// Priorities, most urgent first. The numeric order is the sort order.
const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityLow:
		return "LOW"
	default:
		return "UNKNOWN"
	}
}

// Tip is a personalised savings recommendation.
type Tip struct {
	Title           string
	Category        string
	Message         string
	PotentialSaving decimal.Decimal
	Priority        Priority
}

// CategoryTotal is the month-to-date spend for one category.
type CategoryTotal struct {
	Category Category
	Total    decimal.Decimal
	Count    int
}

// HistoryLabel is the fulfillment status of a month's budget.
type HistoryLabel string

// History labels.
const (
	LabelMet     HistoryLabel = "Met"
	LabelPartial HistoryLabel = "Partial"
	LabelNotMet  HistoryLabel = "Not met"
)

// HistoryRow pairs a budget with its classified outcome.
type HistoryRow struct {
	Budget           BudgetRecord
	Balance          decimal.Decimal
	SavingPercentage float64
	Label            HistoryLabel
}

// LimitAlert reports today's spend against the suggested daily limit.
type LimitAlert struct {
	Near bool
	Over bool
}

// DailySpend is the total logged on one day.
type DailySpend struct {
	Date  string // "2006-01-02"
	Total decimal.Decimal
	Count int
}

// ProfileStats summarizes a user's whole planning history.
type ProfileStats struct {
	MonthsPlanned       int
	TotalIncome         decimal.Decimal
	TotalFixedExpenses  decimal.Decimal
	PlannedSavings      decimal.Decimal
	SavingPercentage    float64
	RecentExpenseCount  int
	RecentExpensesTotal decimal.Decimal
}

// Package model defines domain types for piggy budgets, expenses and derived metrics.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modality is the savings strategy a user picks for a month.
type Modality string

// Savings strategies. Each carries its own goal percentage.
const (
	Aggressive  Modality = "AGGRESSIVE"
	Balanced    Modality = "BALANCED"
	Contingency Modality = "CONTINGENCY"
)

// Modalities lists every known modality in display order.
var Modalities = []Modality{Aggressive, Balanced, Contingency}

// Valid reports whether m is one of the known modalities.
func (m Modality) Valid() bool {
	switch m {
	case Aggressive, Balanced, Contingency:
		return true
	default:
		return false
	}
}

// GoalPercent is the share of income the modality aims to save.
func (m Modality) GoalPercent() float64 {
	switch m {
	case Aggressive:
		return 30
	case Balanced:
		return 15
	case Contingency:
		return 20
	default:
		return 10
	}
}

// Label returns a human-readable modality name.
func (m Modality) Label() string {
	switch m {
	case Aggressive:
		return "Aggressive"
	case Balanced:
		return "Balanced"
	case Contingency:
		return "Contingency"
	default:
		return string(m)
	}
}

// BudgetRecord is one user's plan for one calendar month.
type BudgetRecord struct {
	ID        int64
	UserID    string
	Month     string // "2006-01"
	Income    decimal.Decimal
	Rent      decimal.Decimal
	Utilities decimal.Decimal
	Transport decimal.Decimal
	Other     decimal.Decimal
	Modality  Modality
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FixedExpenses returns rent + utilities + transport + other.
func (b BudgetRecord) FixedExpenses() decimal.Decimal {
	return b.Rent.Add(b.Utilities).Add(b.Transport).Add(b.Other)
}

// Balance returns income minus fixed expenses.
func (b BudgetRecord) Balance() decimal.Decimal {
	return b.Income.Sub(b.FixedExpenses())
}

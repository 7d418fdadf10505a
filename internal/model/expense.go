package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies a daily expense.
type Category string

// Expense categories.
const (
	Food          Category = "FOOD"
	Transport     Category = "TRANSPORT"
	Entertainment Category = "ENTERTAINMENT"
	Services      Category = "SERVICES"
	Health        Category = "HEALTH"
	Other         Category = "OTHER"
)

// Categories lists every category in display order.
var Categories = []Category{Food, Transport, Entertainment, Services, Health, Other}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the display name of the category.
func (c Category) Label() string {
	switch c {
	case Food:
		return "Food"
	case Transport:
		return "Transport"
	case Entertainment:
		return "Entertainment"
	case Services:
		return "Services"
	case Health:
		return "Health"
	case Other:
		return "Other"
	default:
		return string(c)
	}
}

// ExpenseRecord is a single logged spending event.
type ExpenseRecord struct {
	ID          int64
	UserID      string
	Date        string // "2006-01-02"
	Category    Category
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}

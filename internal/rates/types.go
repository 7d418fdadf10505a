package rates

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// LatestResponse is the raw body of the /latest endpoint.
type LatestResponse struct {
	Amount decimal.Decimal            `json:"amount"`
	Base   string                     `json:"base"`
	Date   string                     `json:"date"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

// Quote is one currency's rate against the base.
type Quote struct {
	Currency string
	Rate     decimal.Decimal
}

// Table is a parsed, display-ready set of reference rates.
type Table struct {
	Base      string
	Date      time.Time
	Quotes    []Quote // sorted by currency code
	FetchedAt time.Time
}

// Rate returns the rate for code and whether it was present.
func (t Table) Rate(code string) (decimal.Decimal, bool) {
	if code == t.Base {
		return decimal.NewFromInt(1), true
	}
	for _, q := range t.Quotes {
		if q.Currency == code {
			return q.Rate, true
		}
	}
	return decimal.Zero, false
}

// Convert expresses an amount in the base currency in code.
func (t Table) Convert(amount decimal.Decimal, code string) (decimal.Decimal, bool) {
	r, ok := t.Rate(code)
	if !ok {
		return decimal.Zero, false
	}
	return amount.Mul(r), true
}

func toTable(raw LatestResponse, fetched time.Time) Table {
	t := Table{Base: raw.Base, FetchedAt: fetched}
	if d, err := time.Parse("2006-01-02", raw.Date); err == nil {
		t.Date = d
	}

	// Rates are per raw.Amount units of the base.
	per := raw.Amount
	if !per.IsPositive() {
		per = decimal.NewFromInt(1)
	}
	for code, r := range raw.Rates {
		t.Quotes = append(t.Quotes, Quote{Currency: code, Rate: r.Div(per)})
	}
	sort.Slice(t.Quotes, func(i, j int) bool { return t.Quotes[i].Currency < t.Quotes[j].Currency })
	return t
}

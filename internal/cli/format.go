// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money formats decimal amounts as localized currency.
type Money struct {
	printer *message.Printer
	symbol  string
}

// NewMoney builds a formatter for an ISO 4217 code and a BCP 47 locale.
func NewMoney(code, locale string) (*Money, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("unknown currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("unknown locale %q: %w", locale, err)
	}
	p := message.NewPrinter(tag)
	return &Money{
		printer: p,
		symbol:  p.Sprint(currency.NarrowSymbol(unit)),
	}, nil
}

// MustMoney is NewMoney that falls back to plain USD formatting on bad input.
func MustMoney(code, locale string) *Money {
	m, err := NewMoney(code, locale)
	if err != nil {
		m, _ = NewMoney("USD", "en-US")
	}
	return m
}

// Format renders d with two decimals, grouping and the currency symbol.
// e.g., 3100 -> "Q3,100.00", -400 -> "-Q400.00"
func (m *Money) Format(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + m.symbol + m.printer.Sprintf("%.2f", d.InexactFloat64())
}

// Symbol returns the currency symbol in use.
func (m *Money) Symbol() string {
	return m.symbol
}

// NumberFormat holds the separators a locale writes numbers with.
// Group is zero when the locale does not group digits.
type NumberFormat struct {
	Decimal rune
	Group   rune
}

// PlainNumbers is the locale-free format used by import files: "1,234.50".
var PlainNumbers = NumberFormat{Decimal: '.', Group: ','}

var activeNumbers = PlainNumbers

// NumberFormatFor reads the separators the locale prints 1234567.5 with.
func NumberFormatFor(locale string) (NumberFormat, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return NumberFormat{}, fmt.Errorf("unknown locale %q: %w", locale, err)
	}
	r := []rune(message.NewPrinter(tag).Sprintf("%.1f", 1234567.5))
	if len(r) < 3 || !unicode.IsDigit(r[len(r)-1]) {
		return PlainNumbers, nil
	}
	f := NumberFormat{Decimal: r[len(r)-2]}
	for _, c := range r[:len(r)-2] {
		if !unicode.IsDigit(c) {
			f.Group = c
			break
		}
	}
	return f, nil
}

// SetLocale makes ParseAmount read amounts the way locale writes them.
func SetLocale(locale string) error {
	f, err := NumberFormatFor(locale)
	if err != nil {
		return err
	}
	activeNumbers = f
	return nil
}

// ParseAmount parses a user-entered amount with the active locale's
// separators. See NumberFormat.Parse.
func ParseAmount(s string) (decimal.Decimal, error) {
	return activeNumbers.Parse(s)
}

// Parse reads an amount such as "1,234.50" (en-US) or "1.234,50" (es-ES).
// Group separators must sit between groups of three digits, so "12,50"
// under en-US is rejected instead of being read as 1250.
func (f NumberFormat) Parse(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	sign := ""
	if clean[0] == '-' || clean[0] == '+' {
		sign, clean = clean[:1], clean[1:]
	}
	// Space-grouping locales: accept whichever space the user typed.
	if unicode.IsSpace(f.Group) {
		clean = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return f.Group
			}
			return r
		}, clean)
	}

	whole, frac, hasFrac := strings.Cut(clean, string(f.Decimal))
	if hasFrac && (frac == "" || !allDigits(frac)) {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if f.Group != 0 && strings.ContainsRune(whole, f.Group) {
		groups := strings.Split(whole, string(f.Group))
		for i, g := range groups {
			if !allDigits(g) || (i == 0 && len(g) > 3) || (i > 0 && len(g) != 3) {
				return decimal.Zero, fmt.Errorf("ambiguous amount %q: use %q for decimals", s, f.Decimal)
			}
		}
		whole = strings.Join(groups, "")
	}
	if !allDigits(whole) {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}

	num := sign + whole
	if hasFrac {
		num += "." + frac
	}
	return decimal.NewFromString(num)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m", 45 -> "45s"
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a percentage that is already scaled to 0-100.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatMonth turns "2024-05" into "May 2024". Bad keys are returned as is.
func FormatMonth(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2006")
}

// FormatDay turns "2024-05-03" into "Fri 03 May".
func FormatDay(key string) string {
	t, err := time.Parse("2006-01-02", key)
	if err != nil {
		return key
	}
	return FormatDayOfWeek(int(t.Weekday())) + t.Format(" 02 Jan")
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}

// Truncate shortens s to n runes, adding an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

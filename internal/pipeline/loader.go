package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/model"

	"github.com/shopspring/decimal"
)

// ErrNoSession is returned when a loader is called without a logged-in user.
var ErrNoSession = errors.New("not logged in: run `piggy login` first")

// Reader is the subset of the record store the loaders need.
type Reader interface {
	BudgetForMonth(ctx context.Context, userID, month string) (model.BudgetRecord, bool, error)
	BudgetsForUser(ctx context.Context, userID string) ([]model.BudgetRecord, error)
	ExpensesInRange(ctx context.Context, userID, start, end string) ([]model.ExpenseRecord, error)
}

// MonthSnapshot is everything the status views need for one user and day.
type MonthSnapshot struct {
	Today          time.Time
	Budget         model.BudgetRecord
	Expenses       []model.ExpenseRecord // the whole month, newest first
	TodayExpenses  []model.ExpenseRecord
	SpentToday     decimal.Decimal
	Metrics        model.DerivedMetrics
	Alert          model.LimitAlert
	CategoryTotals []model.CategoryTotal
}

// Tips generates tips for the snapshot's month.
func (s MonthSnapshot) Tips() []model.Tip {
	return GenerateTips(s.Budget, s.CategoryTotals)
}

// LoadMonth reads the budget and expenses of today's month and runs the
// engine over them. found is false when the user has no budget this month.
func LoadMonth(ctx context.Context, r Reader, sess config.Session, today time.Time) (snap MonthSnapshot, found bool, err error) {
	if !sess.LoggedIn() {
		return MonthSnapshot{}, false, ErrNoSession
	}

	month := model.MonthKey(today)
	b, found, err := r.BudgetForMonth(ctx, sess.UserID, month)
	if err != nil {
		return MonthSnapshot{}, false, fmt.Errorf("loading budget: %w", err)
	}
	if !found {
		return MonthSnapshot{Today: today}, false, nil
	}

	start, end, err := model.MonthBounds(month)
	if err != nil {
		return MonthSnapshot{}, false, err
	}
	expenses, err := r.ExpensesInRange(ctx, sess.UserID, start, end)
	if err != nil {
		return MonthSnapshot{}, false, fmt.Errorf("loading expenses: %w", err)
	}

	snap = MonthSnapshot{
		Today:      today,
		Budget:     b,
		Expenses:   expenses,
		SpentToday: decimal.Zero,
	}
	todayKey := model.DateKey(today)
	for _, e := range expenses {
		if e.Date == todayKey {
			snap.TodayExpenses = append(snap.TodayExpenses, e)
			snap.SpentToday = snap.SpentToday.Add(e.Amount)
		}
	}

	snap.Metrics = ComputeMonthlyStatus(b, expenses, today)
	snap.Alert = CheckDailyLimit(snap.Metrics.SuggestedDailyLimit, snap.SpentToday)
	snap.CategoryTotals = CategoryTotals(expenses)
	return snap, true, nil
}

// LoadHistory reads every budget of the session's user, most recent first.
func LoadHistory(ctx context.Context, r Reader, sess config.Session) ([]model.BudgetRecord, error) {
	if !sess.LoggedIn() {
		return nil, ErrNoSession
	}
	budgets, err := r.BudgetsForUser(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading budgets: %w", err)
	}
	return budgets, nil
}

// Overview bundles the month snapshot with the history-wide views.
type Overview struct {
	Month   MonthSnapshot
	HasPlan bool
	History []model.HistoryRow
	Savings model.SavingsIndexSummary
}

// LoadOverview loads the month snapshot, history rows and savings index in
// one pass, for the dashboard and the daemon.
func LoadOverview(ctx context.Context, r Reader, sess config.Session, today time.Time) (Overview, error) {
	snap, found, err := LoadMonth(ctx, r, sess, today)
	if err != nil {
		return Overview{}, err
	}
	budgets, err := LoadHistory(ctx, r, sess)
	if err != nil {
		return Overview{}, err
	}
	return Overview{
		Month:   snap,
		HasPlan: found,
		History: HistoryRows(budgets),
		Savings: ComputeSavingsIndex(budgets),
	}, nil
}

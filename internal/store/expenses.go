package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/piggymobile/piggy/internal/model"

	"github.com/shopspring/decimal"
)

// RecentLimit caps RecentExpenses when the caller passes a non-positive limit.
const RecentLimit = 50

const expenseColumns = `id, user_id, date, category, amount, description, created_at`

func scanExpense(row scanner) (model.ExpenseRecord, error) {
	var e model.ExpenseRecord
	var category, created string
	if err := row.Scan(&e.ID, &e.UserID, &e.Date, &category, &e.Amount, &e.Description, &created); err != nil {
		return model.ExpenseRecord{}, err
	}
	e.Category = model.Category(category)
	e.CreatedAt = parseStamp(created)
	return e, nil
}

// AddExpense inserts e and returns its id.
func (s *Store) AddExpense(ctx context.Context, e model.ExpenseRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO expenses
		(user_id, date, category, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Date, string(e.Category), e.Amount, e.Description, s.stamp(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	s.notify(Change{Kind: ExpenseChanged, UserID: e.UserID, Key: e.Date})
	return id, nil
}

// AddExpenses inserts every record in one transaction and returns how many
// were written. Subscribers get one change per distinct date after commit.
func (s *Store) AddExpenses(ctx context.Context, es []model.ExpenseRecord) (int, error) {
	if len(es) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO expenses
		(user_id, date, category, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := s.stamp()
	for i, e := range es {
		if _, err := stmt.ExecContext(ctx, e.UserID, e.Date, string(e.Category), e.Amount, e.Description, now); err != nil {
			return 0, fmt.Errorf("inserting expense %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	seen := make(map[Change]struct{})
	for _, e := range es {
		c := Change{Kind: ExpenseChanged, UserID: e.UserID, Key: e.Date}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		s.notify(c)
	}
	return len(es), nil
}

// DeleteExpense removes one expense owned by userID.
func (s *Store) DeleteExpense(ctx context.Context, userID string, id int64) error {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ? AND user_id = ?", id, userID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading expense %d: %w", id, err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	s.notify(Change{Kind: ExpenseChanged, UserID: userID, Key: e.Date})
	return nil
}

func (s *Store) queryExpenses(ctx context.Context, query string, args ...any) ([]model.ExpenseRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ExpenseRecord
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ExpensesInRange returns expenses dated within [start, end] inclusive,
// newest first.
func (s *Store) ExpensesInRange(ctx context.Context, userID, start, end string) ([]model.ExpenseRecord, error) {
	return s.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date DESC, id DESC",
		userID, start, end)
}

// ExpensesInMonth returns the expenses of a "YYYY-MM" month.
func (s *Store) ExpensesInMonth(ctx context.Context, userID, month string) ([]model.ExpenseRecord, error) {
	start, end, err := model.MonthBounds(month)
	if err != nil {
		return nil, err
	}
	return s.ExpensesInRange(ctx, userID, start, end)
}

// ExpensesOnDate returns the expenses logged for a single day.
func (s *Store) ExpensesOnDate(ctx context.Context, userID, date string) ([]model.ExpenseRecord, error) {
	return s.ExpensesInRange(ctx, userID, date, date)
}

// RecentExpenses returns the most recent expenses, up to limit.
func (s *Store) RecentExpenses(ctx context.Context, userID string, limit int) ([]model.ExpenseRecord, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	return s.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? ORDER BY date DESC, id DESC LIMIT ?",
		userID, limit)
}

// TotalForDate sums the amounts logged on date.
func (s *Store) TotalForDate(ctx context.Context, userID, date string) (decimal.Decimal, error) {
	expenses, err := s.ExpensesOnDate(ctx, userID, date)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total, nil
}

// CountOnDate returns how many expenses the user logged on date.
func (s *Store) CountOnDate(ctx context.Context, userID, date string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM expenses WHERE user_id = ? AND date = ?", userID, date).Scan(&n)
	return n, err
}

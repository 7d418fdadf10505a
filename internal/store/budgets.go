package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/piggymobile/piggy/internal/model"

	"github.com/shopspring/decimal"
)

const budgetColumns = `id, user_id, month, income, rent, utilities, transport, other, modality, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBudget(row scanner) (model.BudgetRecord, error) {
	var b model.BudgetRecord
	var modality, created, updated string
	err := row.Scan(&b.ID, &b.UserID, &b.Month, &b.Income, &b.Rent, &b.Utilities,
		&b.Transport, &b.Other, &modality, &created, &updated)
	if err != nil {
		return model.BudgetRecord{}, err
	}
	b.Modality = model.Modality(modality)
	b.CreatedAt = parseStamp(created)
	b.UpdatedAt = parseStamp(updated)
	return b, nil
}

// CreateBudget inserts b and returns its id. It fails with ErrBudgetExists
// when the user already has a budget for b.Month.
func (s *Store) CreateBudget(ctx context.Context, b model.BudgetRecord) (int64, error) {
	if _, err := model.ParseMonth(b.Month); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM budgets WHERE user_id = ? AND month = ?", b.UserID, b.Month).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("checking existing budget: %w", err)
	}
	if n > 0 {
		return 0, ErrBudgetExists
	}

	now := s.stamp()
	res, err := tx.ExecContext(ctx, `INSERT INTO budgets
		(user_id, month, income, rent, utilities, transport, other, modality, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Month, b.Income, b.Rent, b.Utilities, b.Transport, b.Other,
		string(b.Modality), now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	s.notify(Change{Kind: BudgetChanged, UserID: b.UserID, Key: b.Month})
	return id, nil
}

// UpdateBudget overwrites the amounts and modality of an existing budget.
// Budgets for months before currentMonth are immutable.
func (s *Store) UpdateBudget(ctx context.Context, b model.BudgetRecord, currentMonth string) error {
	existing, err := s.BudgetByID(ctx, b.UserID, b.ID)
	if err != nil {
		return err
	}
	if existing.Month < currentMonth {
		return ErrPastMonth
	}

	_, err = s.db.ExecContext(ctx, `UPDATE budgets SET
		income = ?, rent = ?, utilities = ?, transport = ?, other = ?, modality = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		b.Income, b.Rent, b.Utilities, b.Transport, b.Other, string(b.Modality), s.stamp(),
		b.ID, b.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating budget: %w", err)
	}

	s.notify(Change{Kind: BudgetChanged, UserID: b.UserID, Key: existing.Month})
	return nil
}

// AddIncome adds extra income to the user's budget for month.
func (s *Store) AddIncome(ctx context.Context, userID, month string, amount decimal.Decimal, currentMonth string) (model.BudgetRecord, error) {
	if month < currentMonth {
		return model.BudgetRecord{}, ErrPastMonth
	}
	b, found, err := s.BudgetForMonth(ctx, userID, month)
	if err != nil {
		return model.BudgetRecord{}, err
	}
	if !found {
		return model.BudgetRecord{}, ErrNotFound
	}

	b.Income = b.Income.Add(amount)
	if err := s.UpdateBudget(ctx, b, currentMonth); err != nil {
		return model.BudgetRecord{}, err
	}
	return b, nil
}

// DeleteBudget removes one budget owned by userID.
func (s *Store) DeleteBudget(ctx context.Context, userID string, id int64) error {
	existing, err := s.BudgetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}
	s.notify(Change{Kind: BudgetChanged, UserID: userID, Key: existing.Month})
	return nil
}

// BudgetByID returns one budget owned by userID.
func (s *Store) BudgetByID(ctx context.Context, userID string, id int64) (model.BudgetRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE id = ? AND user_id = ?", id, userID)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BudgetRecord{}, ErrNotFound
	}
	if err != nil {
		return model.BudgetRecord{}, fmt.Errorf("reading budget %d: %w", id, err)
	}
	return b, nil
}

// BudgetForMonth returns the user's budget for month. found is false when
// none exists.
func (s *Store) BudgetForMonth(ctx context.Context, userID, month string) (b model.BudgetRecord, found bool, err error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE user_id = ? AND month = ?", userID, month)
	b, err = scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BudgetRecord{}, false, nil
	}
	if err != nil {
		return model.BudgetRecord{}, false, fmt.Errorf("reading budget for %s: %w", month, err)
	}
	return b, true, nil
}

// BudgetsForUser returns every budget owned by userID, most recent month first.
func (s *Store) BudgetsForUser(ctx context.Context, userID string) ([]model.BudgetRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE user_id = ? ORDER BY month DESC, created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.BudgetRecord
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

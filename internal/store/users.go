package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/piggymobile/piggy/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, first_name, last_name, email, password_hash, created_at`

func scanUser(row scanner) (model.User, error) {
	var u model.User
	var created string
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &created); err != nil {
		return model.User{}, err
	}
	u.CreatedAt = parseStamp(created)
	return u, nil
}

// CreateUser registers a new account. Emails are unique ignoring case.
func (s *Store) CreateUser(ctx context.Context, in model.UserInput) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.UserByEmail(ctx, email); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return model.User{}, err
	}

	created := s.now().UTC()
	u := model.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    created.Truncate(time.Second),
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO users
		(id, first_name, last_name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, created.Format(timeLayout),
	)
	if err != nil {
		return model.User{}, fmt.Errorf("inserting user: %w", err)
	}

	s.notify(Change{Kind: UserChanged, UserID: u.ID})
	return u, nil
}

// Authenticate checks email and password and returns the matching user.
func (s *Store) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.UserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// UserByEmail looks up a user by email, ignoring case.
func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", strings.ToLower(strings.TrimSpace(email)))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UserByID looks up a user by id.
func (s *Store) UserByID(ctx context.Context, id string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Users lists every registered account, oldest first.
func (s *Store) Users(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ChangePassword replaces the user's password after checking the current
// one. A wrong current password yields ErrInvalidCredentials.
func (s *Store) ChangePassword(ctx context.Context, userID string, in model.PasswordInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	u, err := s.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.New), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ?", string(hash), userID); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	s.notify(Change{Kind: UserChanged, UserID: userID})
	return nil
}

// Package store provides SQLite-backed persistence for users, budgets and expenses.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Sentinel errors returned by store operations.
var (
	ErrNotFound           = errors.New("store: record not found")
	ErrBudgetExists       = errors.New("store: a budget for this month already exists")
	ErrPastMonth          = errors.New("store: past months cannot be modified")
	ErrEmailTaken         = errors.New("store: email already registered")
	ErrInvalidCredentials = errors.New("store: invalid email or password")
)

const timeLayout = time.RFC3339

// Store is the record store. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time

	mu     sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

// Open opens or creates the database at dbPath and applies pending migrations.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	// One connection keeps PRAGMA data_version meaningful across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening db: %w", err)
	}

	return &Store{
		db:   db,
		now:  time.Now,
		subs: make(map[int]func(Change)),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock overrides the timestamp source used for created/updated columns.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseStamp(v string) time.Time {
	t, _ := time.Parse(timeLayout, v)
	return t
}

// DataVersion returns SQLite's data_version counter, which changes when
// another connection commits to the database.
func (s *Store) DataVersion(ctx context.Context) (int64, error) {
	var v int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading data_version: %w", err)
	}
	return v, nil
}

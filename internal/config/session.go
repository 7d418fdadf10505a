package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Session records which local user is logged in.
type Session struct {
	UserID   string    `toml:"user_id"`
	Email    string    `toml:"email"`
	Name     string    `toml:"name"`
	LoggedAt time.Time `toml:"logged_at"`
}

// LoggedIn reports whether the session names a user.
func (s Session) LoggedIn() bool {
	return s.UserID != ""
}

// SessionPath returns the session file location.
func SessionPath() string {
	return filepath.Join(Dir(), "session.toml")
}

// LoadSession reads the session file. A missing file is an empty session.
func LoadSession() (Session, error) {
	var s Session
	data, err := os.ReadFile(SessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("reading session: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("parsing session: %w", err)
	}
	return s, nil
}

// SaveSession writes s to the session file.
func SaveSession(s Session) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	f, err := os.OpenFile(SessionPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating session file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return toml.NewEncoder(f).Encode(s)
}

// ClearSession removes the session file.
func ClearSession() error {
	err := os.Remove(SessionPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

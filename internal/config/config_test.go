package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func useTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvRatesURL, "")
	return dir
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	useTempDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reminder.Schedule != "0 20 * * *" {
		t.Fatalf("reminder schedule = %q, want daily 20:00", cfg.Reminder.Schedule)
	}
	if cfg.Daemon.PollInterval.Duration != 2*time.Second {
		t.Fatalf("poll interval = %v, want 2s", cfg.Daemon.PollInterval)
	}
	if Exists() {
		t.Fatal("Exists() = true before Save")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := useTempDir(t)

	cfg := DefaultConfig()
	cfg.General.Currency = "EUR"
	cfg.General.Locale = "es-ES"
	cfg.Daemon.PollInterval = Duration{5 * time.Second}
	cfg.Rates.To = []string{"GTQ", "MXN"}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.Currency != "EUR" || got.General.Locale != "es-ES" {
		t.Fatalf("general = %+v", got.General)
	}
	if got.Daemon.PollInterval.Duration != 5*time.Second {
		t.Fatalf("poll interval = %v, want 5s", got.Daemon.PollInterval)
	}
	if len(got.Rates.To) != 2 || got.Rates.To[1] != "MXN" {
		t.Fatalf("rates.to = %v", got.Rates.To)
	}
}

func TestEnvOverrides(t *testing.T) {
	useTempDir(t)
	t.Setenv(EnvDBPath, "/tmp/other.db")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvRatesURL, "http://localhost:9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath() != "/tmp/other.db" {
		t.Fatalf("DBPath() = %q", cfg.DBPath())
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
	if cfg.Rates.BaseURL != "http://localhost:9999" {
		t.Fatalf("rates url = %q", cfg.Rates.BaseURL)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	dir := useTempDir(t)
	data := []byte("[daemon]\npoll_interval = \"soon\"\n")
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), data, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("Load accepted an invalid duration")
	}
}

func TestSessionLifecycle(t *testing.T) {
	useTempDir(t)

	s, err := LoadSession()
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if s.LoggedIn() {
		t.Fatal("empty session reports logged in")
	}

	want := Session{UserID: "abc", Email: "ana@example.com", Name: "Ana", LoggedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	if err := SaveSession(want); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	got, err := LoadSession()
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if got.UserID != want.UserID || got.Email != want.Email || !got.LoggedAt.Equal(want.LoggedAt) {
		t.Fatalf("session = %+v, want %+v", got, want)
	}

	if err := ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if err := ClearSession(); err != nil {
		t.Fatalf("second ClearSession: %v", err)
	}
	got, _ = LoadSession()
	if got.LoggedIn() {
		t.Fatal("session survived ClearSession")
	}
}

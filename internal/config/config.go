// Package config loads and saves piggy's TOML configuration and login session.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override config values.
const (
	EnvConfigDir = "PIGGY_CONFIG_DIR"
	EnvDBPath    = "PIGGY_DB_PATH"
	EnvLogLevel  = "PIGGY_LOG_LEVEL"
	EnvRatesURL  = "PIGGY_RATES_URL"
)

// Config holds all piggy configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Reminder   ReminderConfig   `toml:"reminder"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Rates      RatesConfig      `toml:"rates"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Currency string `toml:"currency"`
	Locale   string `toml:"locale"`
	DBPath   string `toml:"db_path,omitempty"`
}

// ReminderConfig controls the daily "did you log your expenses?" reminder.
type ReminderConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // cron spec, local time
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	Addr         string   `toml:"addr"`
	PollInterval Duration `toml:"poll_interval"`
	EventsBuffer int      `toml:"events_buffer"`
}

// RatesConfig holds exchange-rate lookup settings.
type RatesConfig struct {
	BaseURL string   `toml:"base_url"`
	From    string   `toml:"from"`
	To      []string `toml:"to,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings for long-running commands.
type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// Duration is a time.Duration that round-trips through TOML as a string.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency: "GTQ",
			Locale:   "es-GT",
		},
		Reminder: ReminderConfig{
			Enabled:  true,
			Schedule: "0 20 * * *",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			PollInterval: Duration{2 * time.Second},
			EventsBuffer: 200,
		},
		Rates: RatesConfig{
			BaseURL: "https://api.frankfurter.app",
			From:    "USD",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "piggy")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "piggy")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DefaultDBPath returns the XDG data location of the database.
func DefaultDBPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "piggy", "piggy.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "piggy", "piggy.db")
}

// LoadEnv reads a .env file from the working directory, if present.
// Variables already set in the environment win.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.General.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvRatesURL); v != "" {
		cfg.Rates.BaseURL = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// DBPath returns the configured database path or the default.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	return DefaultDBPath()
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/logging"
	"github.com/piggymobile/piggy/internal/pipeline"
	"github.com/piggymobile/piggy/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagDBPath  string
	flagQuiet   bool
	flagVerbose bool
	flagLogJSON bool
)

// now is the clock every command reads "today" from.
var now = time.Now

var rootCmd = &cobra.Command{
	Use:           "piggy",
	Short:         "Personal budget and expense tracker",
	Long:          "Plan a monthly budget, log daily expenses, and see how much you can still spend today.",
	RunE:          runStatus,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "  Warning: %v\n", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Database path (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging for background commands")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Log as JSON")
}

// loadConfig returns the config, falling back to defaults on a bad file.
// It also points amount parsing at the configured locale.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	if err := cli.SetLocale(cfg.General.Locale); err != nil {
		fmt.Fprintf(os.Stderr, "  Warning: %v\n", err)
	}
	return cfg
}

func dbPath(cfg config.Config) string {
	if flagDBPath != "" {
		return flagDBPath
	}
	return cfg.DBPath()
}

func openStore(cfg config.Config) (*store.Store, error) {
	st, err := store.Open(dbPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return st, nil
}

// requireSession returns the logged-in session or pipeline.ErrNoSession.
func requireSession() (config.Session, error) {
	sess, err := config.LoadSession()
	if err != nil {
		return sess, err
	}
	if !sess.LoggedIn() {
		return sess, pipeline.ErrNoSession
	}
	return sess, nil
}

func money(cfg config.Config) *cli.Money {
	return cli.MustMoney(cfg.General.Currency, cfg.General.Locale)
}

func newLogger(cfg config.Config) *logrus.Logger {
	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level: level,
		JSON:  cfg.Log.JSON || flagLogJSON,
	})
}

func progressf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}

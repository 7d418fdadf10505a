// Package cmd implements the piggy CLI commands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/store"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Currency: %s (%s)\n", cfg.General.Currency, money(cfg).Symbol())
	fmt.Printf("    Locale:   %s\n", cfg.General.Locale)
	fmt.Printf("    Database: %s\n", dbPath(cfg))
	if _, err := os.Stat(dbPath(cfg)); err != nil {
		fmt.Println("    Schema:   not created yet")
	} else if version, dirty, err := store.SchemaVersion(dbPath(cfg)); err == nil {
		state := ""
		if dirty {
			state = " (dirty)"
		}
		fmt.Printf("    Schema:   v%d%s\n", version, state)
	}
	fmt.Println()

	fmt.Println("  [Session]")
	sess, err := config.LoadSession()
	switch {
	case err != nil:
		fmt.Printf("    Error: %v\n", err)
	case sess.LoggedIn():
		fmt.Printf("    User: %s <%s>\n", sess.Name, sess.Email)
	default:
		fmt.Println("    Not logged in")
	}
	fmt.Println()

	fmt.Println("  [Reminder]")
	fmt.Printf("    Enabled:  %v\n", cfg.Reminder.Enabled)
	fmt.Printf("    Schedule: %s\n", cfg.Reminder.Schedule)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Poll interval: %s\n", cfg.Daemon.PollInterval.Duration)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Rates]")
	fmt.Printf("    API:  %s\n", cfg.Rates.BaseURL)
	to := cfg.Rates.To
	if len(to) == 0 {
		to = []string{cfg.General.Currency}
	}
	fmt.Printf("    Pair: %s → %s\n", cfg.Rates.From, strings.Join(to, ", "))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s  JSON: %v\n", cfg.Log.Level, cfg.Log.JSON)
	fmt.Println()

	fmt.Println("  Run `piggy setup` to reconfigure.")
	return nil
}

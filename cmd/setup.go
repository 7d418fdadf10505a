package cmd

import (
	"fmt"

	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/tui"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg := loadConfig()

	vals := tui.NewSetupValues(cfg)
	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		return err
	}
	vals.Apply(&cfg)

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `piggy setup` anytime to reconfigure.")
	if sess, _ := config.LoadSession(); !sess.LoggedIn() {
		fmt.Println("  Next: `piggy register` to create your account.")
	}
	fmt.Println()
	return nil
}

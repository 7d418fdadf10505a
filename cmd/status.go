package cmd

import (
	"context"
	"fmt"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/pipeline"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "This month's budget status and today's spending limit",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	cfg := loadConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	today := now()
	snap, found, err := pipeline.LoadMonth(context.Background(), st, sess, today)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PIGGY  " + cli.FormatMonth(model.MonthKey(today))))
	fmt.Println()

	if !found {
		fmt.Printf("  Hi %s, you have no budget for this month yet.\n", sess.Name)
		fmt.Println("  Plan it with: piggy budget set")
		fmt.Println()
		return nil
	}

	m := money(cfg)
	dm := snap.Metrics

	balanceTone := cli.ToneGood
	if dm.IsOverBudget {
		balanceTone = cli.ToneBad
	}

	rows := [][]string{
		{"Income", m.Format(dm.Income)},
		{"Fixed expenses", m.Format(dm.FixedExpenseTotal)},
		{"Planned balance", m.Format(dm.PlannedBalance)},
		{"---"},
		{"Spent this month", fmt.Sprintf("%s  (%d expenses)", m.Format(dm.SpentThisMonth), dm.ExpenseCount)},
		{"Actual balance", cli.Paint(m.Format(dm.ActualBalance), balanceTone)},
		{"---"},
		{"Days remaining", fmt.Sprintf("%d of %d", dm.DaysRemaining, dm.DaysInMonth)},
		{"Average per day", m.Format(dm.AverageDailySpend)},
		{"Suggested daily limit", m.Format(dm.SuggestedDailyLimit)},
		{"Spent today", m.Format(snap.SpentToday)},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	fmt.Println()
	fmt.Printf("  Spent  %s\n", cli.RenderProgressBar(dm.PercentageSpent, 30))
	fmt.Printf("  Modality: %s (goal: save %.0f%%)\n", dm.Modality.Label(), dm.Modality.GoalPercent())

	if dm.IsOverBudget {
		fmt.Println("  " + cli.Paint("You have spent more than your planned balance this month.", cli.ToneBad))
	}
	printLimitAlert(snap.Alert)
	fmt.Println()
	return nil
}

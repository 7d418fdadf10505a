package cmd

import (
	"context"
	"fmt"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagDailyMonth string

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Day-by-day spending for a month",
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().StringVar(&flagDailyMonth, "month", "", "Month as YYYY-MM (default: this month)")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, _ []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	cfg := loadConfig()
	m := money(cfg)

	today := now()
	month := model.MonthKey(today)
	if flagDailyMonth != "" {
		if _, err := model.ParseMonth(flagDailyMonth); err != nil {
			return err
		}
		month = flagDailyMonth
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	expenses, err := st.ExpensesInMonth(ctx, sess.UserID, month)
	if err != nil {
		return err
	}
	days := pipeline.AggregateDays(expenses, month, today)

	fmt.Println()
	fmt.Println(cli.RenderTitle("DAILY SPENDING  " + cli.FormatMonth(month)))
	fmt.Println()
	if len(days) == 0 {
		fmt.Println("  No data for this month yet.")
		fmt.Println()
		return nil
	}

	// The suggested limit only applies to the current month.
	limit := ""
	if month == model.MonthKey(today) {
		if b, found, err := st.BudgetForMonth(ctx, sess.UserID, month); err == nil && found {
			dm := pipeline.ComputeMonthlyStatus(b, expenses, today)
			limit = m.Format(dm.SuggestedDailyLimit)
		}
	}

	rows := make([][]string, 0, len(days))
	values := make([]float64, len(days))
	for i, d := range days {
		rows = append(rows, []string{
			d.Date,
			cli.FormatDay(d.Date)[:3],
			cli.FormatNumber(int64(d.Count)),
			m.Format(d.Total),
		})
		values[len(days)-1-i] = d.Total.InexactFloat64()
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Expenses", "Spent"},
		Rows:    rows,
	}))
	fmt.Println()
	fmt.Printf("  Trend  %s\n", cli.RenderSparkline(values))
	if limit != "" {
		fmt.Printf("  Suggested daily limit for the rest of the month: %s\n", limit)
	}
	fmt.Println()
	return nil
}

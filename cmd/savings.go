package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/pipeline"

	"github.com/spf13/cobra"
)

var savingsCmd = &cobra.Command{
	Use:   "savings",
	Short: "Savings index across every month you planned",
	RunE:  runSavings,
}

func init() {
	rootCmd.AddCommand(savingsCmd)
}

func runSavings(_ *cobra.Command, _ []string) error {
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

	budgets, err := pipeline.LoadHistory(context.Background(), st, sess)
	if err != nil {
		return err
	}
	idx := pipeline.ComputeSavingsIndex(budgets)

	fmt.Println()
	fmt.Println(cli.RenderTitle("SAVINGS INDEX"))
	fmt.Println()

	if !idx.HasData {
		fmt.Println("  No budgets yet. Plan one with: piggy budget set")
		fmt.Println()
		return nil
	}

	m := money(cfg)
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"", "Total"},
		Rows: [][]string{
			{"Income", m.Format(idx.TotalIncome)},
			{"Rent", m.Format(idx.TotalRent)},
			{"Utilities", m.Format(idx.TotalUtilities)},
			{"Transport", m.Format(idx.TotalTransport)},
			{"Other", m.Format(idx.TotalOther)},
			{"---"},
			{"Fixed expenses", m.Format(idx.TotalExpenses)},
			{"Savings", m.Format(idx.TotalSavings)},
			{"Savings index", cli.Paint(fmt.Sprintf("%s  %s", cli.FormatPercent(idx.SavingPercentage), idx.Status), statusTone(idx.Status))},
		},
	}))

	if len(idx.Trend) > 0 {
		values := make([]float64, 0, len(idx.Trend))
		months := make([]string, 0, len(idx.Trend))
		for _, t := range idx.Trend {
			values = append(values, t.SavingPercentage)
			arrow := "▲"
			if t.Direction == model.TrendDown {
				arrow = "▼"
			}
			months = append(months, fmt.Sprintf("%s %s %s", cli.FormatMonth(t.Month), cli.FormatPercent(t.SavingPercentage), arrow))
		}
		fmt.Println()
		fmt.Printf("  Trend  %s\n", cli.RenderSparkline(values))
		fmt.Printf("         %s\n", strings.Join(months, "  "))
	}

	if len(idx.Recommendations) > 0 {
		fmt.Println()
		fmt.Println("  Recommendations")
		for _, r := range idx.Recommendations {
			fmt.Printf("   • %s\n", r)
		}
	}
	fmt.Println()
	return nil
}

func statusTone(s model.SavingStatus) cli.Tone {
	switch s {
	case model.StatusExcellent, model.StatusVeryGood:
		return cli.ToneGood
	case model.StatusGood, model.StatusFair:
		return cli.ToneWarn
	case model.StatusLow:
		return cli.ToneBad
	default:
		return cli.ToneMuted
	}
}

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/pipeline"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Past budgets and whether their saving goal was met",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
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

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET HISTORY"))
	fmt.Println()

	if len(budgets) == 0 {
		fmt.Println("  No budgets yet. Plan one with: piggy budget set")
		fmt.Println()
		return nil
	}

	m := money(cfg)
	rows := pipeline.HistoryRows(budgets)
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			strconv.FormatInt(r.Budget.ID, 10),
			cli.FormatMonth(r.Budget.Month),
			r.Budget.Modality.Label(),
			m.Format(r.Budget.Income),
			m.Format(r.Balance),
			cli.FormatPercent(r.SavingPercentage),
			cli.Paint(string(r.Label), labelTone(r.Label)),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Month", "Modality", "Income", "Balance", "Saved", "Goal"},
		Rows:    out,
	}))

	counts := pipeline.HistoryCounts(rows)
	fmt.Printf("\n  %d met, %d partial, %d not met\n\n",
		counts[model.LabelMet], counts[model.LabelPartial], counts[model.LabelNotMet])
	return nil
}

func labelTone(l model.HistoryLabel) cli.Tone {
	switch l {
	case model.LabelMet:
		return cli.ToneGood
	case model.LabelPartial:
		return cli.ToneWarn
	case model.LabelNotMet:
		return cli.ToneBad
	default:
		return cli.ToneNormal
	}
}

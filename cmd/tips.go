package cmd

import (
	"context"
	"fmt"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/pipeline"

	"github.com/spf13/cobra"
)

var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Personalised saving tips for this month",
	RunE:  runTips,
}

func init() {
	rootCmd.AddCommand(tipsCmd)
}

func runTips(_ *cobra.Command, _ []string) error {
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

	snap, found, err := pipeline.LoadMonth(context.Background(), st, sess, now())
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SAVING TIPS"))
	fmt.Println()

	if !found {
		fmt.Println("  Tips are based on this month's budget. Plan it with: piggy budget set")
		fmt.Println()
		return nil
	}

	m := money(cfg)
	if len(snap.CategoryTotals) > 0 {
		top := snap.CategoryTotals[0].Total.InexactFloat64()
		fmt.Println("  Spending by category")
		for _, ct := range snap.CategoryTotals {
			label := fmt.Sprintf("%-14s %12s", ct.Category.Label(), m.Format(ct.Total))
			fmt.Println(cli.RenderHorizontalBar(label, ct.Total.InexactFloat64(), top, 24))
		}
		fmt.Println()
	}

	for i, t := range snap.Tips() {
		fmt.Printf("  %2d. %s  %s\n", i+1, cli.Paint(t.Title, priorityTone(t.Priority)),
			cli.Paint("["+t.Category+" · "+t.Priority.String()+"]", cli.ToneMuted))
		fmt.Printf("      %s\n", t.Message)
		if t.PotentialSaving.IsPositive() {
			fmt.Printf("      Potential saving: %s\n", m.Format(t.PotentialSaving))
		}
	}
	fmt.Println()
	return nil
}

func priorityTone(p model.Priority) cli.Tone {
	switch p {
	case model.PriorityHigh:
		return cli.ToneBad
	case model.PriorityMedium:
		return cli.ToneWarn
	default:
		return cli.ToneGood
	}
}

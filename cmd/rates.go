package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/rates"

	"github.com/spf13/cobra"
)

var (
	flagRatesFrom   string
	flagRatesTo     []string
	flagRatesAmount string
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Reference exchange rates for your currency",
	RunE:  runRates,
}

func init() {
	ratesCmd.Flags().StringVar(&flagRatesFrom, "from", "", "Base currency (default from config)")
	ratesCmd.Flags().StringSliceVar(&flagRatesTo, "to", nil, "Target currencies (default: your currency)")
	ratesCmd.Flags().StringVar(&flagRatesAmount, "amount", "1", "Amount of the base currency to convert")
	rootCmd.AddCommand(ratesCmd)
}

func runRates(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	from := strings.ToUpper(cfg.Rates.From)
	if flagRatesFrom != "" {
		from = strings.ToUpper(flagRatesFrom)
	}
	to := flagRatesTo
	if len(to) == 0 {
		to = cfg.Rates.To
	}
	if len(to) == 0 {
		to = []string{cfg.General.Currency}
	}
	amount, err := cli.ParseAmount(flagRatesAmount)
	if err != nil {
		return err
	}

	progressf("  Fetching rates...\n")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	table, err := rates.NewClient(cfg.Rates.BaseURL).Latest(ctx, from, to...)
	if err != nil {
		if errors.Is(err, rates.ErrRateLimited) {
			return errors.New("rate limited by the exchange-rate API, try again in a minute")
		}
		if errors.Is(err, rates.ErrUnknownCurrency) {
			return fmt.Errorf("unknown currency in %s → %s", from, strings.Join(to, ","))
		}
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("EXCHANGE RATES  %s  %s", table.Base, table.Date.Format("2006-01-02"))))
	fmt.Println()

	base := cli.MustMoney(table.Base, cfg.General.Locale)
	rows := make([][]string, 0, len(table.Quotes))
	for _, q := range table.Quotes {
		converted, _ := table.Convert(amount, q.Currency)
		target := cli.MustMoney(q.Currency, cfg.General.Locale)
		rows = append(rows, []string{
			q.Currency,
			q.Rate.StringFixed(4),
			base.Format(amount) + " = " + target.Format(converted),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Currency", "Rate", "Conversion"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

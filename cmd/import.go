package cmd

import (
	"context"
	"fmt"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/source"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var flagImportDryRun bool

var expenseImportCmd = &cobra.Command{
	Use:   "import <file-or-dir>",
	Short: "Import expenses from .jsonl or .csv files",
	Long: `Import expenses in bulk. JSONL lines look like
  {"date":"2024-06-01","category":"FOOD","amount":"12.50","description":"lunch","ref":"optional-id"}
CSV files need a header with date, category and amount (description optional).
Invalid lines are reported and skipped; everything else is written in one transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: runExpenseImport,
}

func init() {
	expenseImportCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Parse and report without writing")
	expenseCmd.AddCommand(expenseImportCmd)
}

func runExpenseImport(c *cobra.Command, args []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	cfg := loadConfig()
	m := money(cfg)
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := source.Scan(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("\n  No .jsonl or .csv files found.")
		return nil
	}
	progressf("  Parsing %d file(s)...\n", len(files))

	results, err := source.ParseAll(ctx, files)
	if err != nil {
		return err
	}

	var (
		records  []model.ExpenseRecord
		rejected []source.LineError
		total    = decimal.Zero
	)
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("%s: %w", r.File.Path, r.Err)
		}
		rejected = append(rejected, r.Rejected...)
		for _, in := range r.Expenses {
			records = append(records, in.Record(sess.UserID))
			total = total.Add(in.Amount)
		}
	}

	for _, le := range rejected {
		progressf("  %s %s\n", cli.Paint("skip", cli.ToneWarn), le.Error())
	}

	written := 0
	if !flagImportDryRun && len(records) > 0 {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if written, err = st.AddExpenses(ctx, records); err != nil {
			return err
		}
	}

	fmt.Println()
	verb := "Imported"
	if flagImportDryRun {
		verb, written = "Would import", len(records)
	}
	fmt.Printf("  %s %s expenses totalling %s from %d file(s)\n",
		verb, formatNumber(int64(written)), m.Format(total), len(files))
	if len(rejected) > 0 {
		fmt.Printf("  %s\n", cli.Paint(fmt.Sprintf("%d line(s) skipped", len(rejected)), cli.ToneWarn))
	}
	fmt.Println()
	return nil
}

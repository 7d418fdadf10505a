package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/store"
	"github.com/piggymobile/piggy/internal/tui"

	"github.com/spf13/cobra"
)

// errDeleteCurrentMonth is the policy error for deleting the live budget.
var errDeleteCurrentMonth = errors.New("the current month's budget cannot be deleted, edit it instead")

var flagBudget tui.BudgetValues

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Plan and manage monthly budgets",
}

var budgetSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create the budget for a month (this month by default)",
	RunE:  runBudgetSet,
}

var budgetEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit this month's budget",
	RunE:  runBudgetEdit,
}

var budgetAddIncomeCmd = &cobra.Command{
	Use:   "add-income <amount>",
	Short: "Add extra income to this month's budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetAddIncome,
}

var budgetDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a past month's budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetDelete,
}

func init() {
	for _, c := range []*cobra.Command{budgetSetCmd, budgetEditCmd} {
		c.Flags().StringVar(&flagBudget.Month, "month", "", "Month as YYYY-MM (default: this month)")
		c.Flags().StringVar(&flagBudget.Income, "income", "", "Monthly income")
		c.Flags().StringVar(&flagBudget.Rent, "rent", "", "Rent")
		c.Flags().StringVar(&flagBudget.Utilities, "utilities", "", "Utilities")
		c.Flags().StringVar(&flagBudget.Transport, "transport", "", "Transport")
		c.Flags().StringVar(&flagBudget.Other, "other", "", "Other fixed expenses")
		c.Flags().StringVar(&flagBudget.Modality, "modality", "", "AGGRESSIVE, BALANCED or CONTINGENCY")
	}

	budgetCmd.AddCommand(budgetSetCmd, budgetEditCmd, budgetAddIncomeCmd, budgetDeleteCmd)
	rootCmd.AddCommand(budgetCmd)
}

// mergeBudgetFlags overlays the flags the user actually passed onto vals.
func mergeBudgetFlags(c *cobra.Command, vals *tui.BudgetValues) {
	set := func(name string, dst *string, v string) {
		if c.Flags().Changed(name) {
			*dst = v
		}
	}
	set("month", &vals.Month, flagBudget.Month)
	set("income", &vals.Income, flagBudget.Income)
	set("rent", &vals.Rent, flagBudget.Rent)
	set("utilities", &vals.Utilities, flagBudget.Utilities)
	set("transport", &vals.Transport, flagBudget.Transport)
	set("other", &vals.Other, flagBudget.Other)
	set("modality", &vals.Modality, flagBudget.Modality)
}

func anyBudgetFlag(c *cobra.Command) bool {
	for _, name := range []string{"income", "rent", "utilities", "transport", "other", "modality"} {
		if c.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func runBudgetSet(c *cobra.Command, _ []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	cfg := loadConfig()
	m := money(cfg)

	vals := tui.NewBudgetValues(model.BudgetRecord{Month: model.MonthKey(now())})
	mergeBudgetFlags(c, &vals)
	if !c.Flags().Changed("income") {
		if err := tui.NewBudgetForm(&vals, m.Symbol()).Run(); err != nil {
			return err
		}
	}

	in, err := vals.Input()
	if err != nil {
		return err
	}
	if in.Month < model.MonthKey(now()) {
		return fmt.Errorf("cannot plan %s: %w", cli.FormatMonth(in.Month), store.ErrPastMonth)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	rec := in.Record(sess.UserID)
	id, err := st.CreateBudget(context.Background(), rec)
	if errors.Is(err, store.ErrBudgetExists) {
		return fmt.Errorf("%s already has a budget, use `piggy budget edit`", cli.FormatMonth(in.Month))
	}
	if err != nil {
		return err
	}

	fmt.Printf("\n  Budget #%d saved for %s\n", id, cli.FormatMonth(rec.Month))
	printBudgetSummary(m, rec)
	return nil
}

func runBudgetEdit(c *cobra.Command, _ []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	cfg := loadConfig()
	m := money(cfg)

	month := model.MonthKey(now())
	if c.Flags().Changed("month") {
		month = flagBudget.Month
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	existing, found, err := st.BudgetForMonth(ctx, sess.UserID, month)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no budget for %s, create one with `piggy budget set`", cli.FormatMonth(month))
	}

	vals := tui.NewBudgetValues(existing)
	mergeBudgetFlags(c, &vals)
	vals.Month = existing.Month
	if !anyBudgetFlag(c) {
		if err := tui.NewBudgetForm(&vals, m.Symbol()).Run(); err != nil {
			return err
		}
		vals.Month = existing.Month
	}

	in, err := vals.Input()
	if err != nil {
		return err
	}
	rec := in.Record(sess.UserID)
	rec.ID = existing.ID

	err = st.UpdateBudget(ctx, rec, model.MonthKey(now()))
	if errors.Is(err, store.ErrPastMonth) {
		return fmt.Errorf("%s is closed and can no longer be edited", cli.FormatMonth(existing.Month))
	}
	if err != nil {
		return err
	}

	fmt.Printf("\n  Budget for %s updated\n", cli.FormatMonth(rec.Month))
	printBudgetSummary(m, rec)
	return nil
}

func runBudgetAddIncome(_ *cobra.Command, args []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	amount, err := cli.ParseAmount(args[0])
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return errors.New("amount must be greater than zero")
	}

	cfg := loadConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	month := model.MonthKey(now())
	b, err := st.AddIncome(context.Background(), sess.UserID, month, amount, month)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no budget for %s, create one with `piggy budget set`", cli.FormatMonth(month))
	}
	if err != nil {
		return err
	}

	m := money(cfg)
	fmt.Printf("\n  Added %s. Income for %s is now %s\n\n", m.Format(amount), cli.FormatMonth(month), m.Format(b.Income))
	return nil
}

func runBudgetDelete(_ *cobra.Command, args []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid budget id %q", args[0])
	}

	cfg := loadConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	b, err := st.BudgetByID(ctx, sess.UserID, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("budget #%d not found", id)
	}
	if err != nil {
		return err
	}
	if err := checkDeletable(b, model.MonthKey(now())); err != nil {
		return err
	}
	if err := st.DeleteBudget(ctx, sess.UserID, id); err != nil {
		return err
	}

	fmt.Printf("  Deleted budget #%d (%s)\n", id, cli.FormatMonth(b.Month))
	return nil
}

// checkDeletable enforces that only months other than the current one can
// be deleted.
func checkDeletable(b model.BudgetRecord, currentMonth string) error {
	if b.Month == currentMonth {
		return errDeleteCurrentMonth
	}
	return nil
}

func printBudgetSummary(m *cli.Money, b model.BudgetRecord) {
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"", "Amount"},
		Rows: [][]string{
			{"Income", m.Format(b.Income)},
			{"Rent", m.Format(b.Rent)},
			{"Utilities", m.Format(b.Utilities)},
			{"Transport", m.Format(b.Transport)},
			{"Other", m.Format(b.Other)},
			{"---"},
			{"Fixed expenses", m.Format(b.FixedExpenses())},
			{"Planned balance", m.Format(b.Balance())},
		},
	}))
	fmt.Printf("  Modality: %s (goal: save %.0f%%)\n\n", b.Modality.Label(), b.Modality.GoalPercent())
}

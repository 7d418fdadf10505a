package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/pipeline"
	"github.com/piggymobile/piggy/internal/store"
	"github.com/piggymobile/piggy/internal/tui"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagExpense     tui.ExpenseValues
	flagListMonth   bool
	flagListRecent  int
	flagListDateArg string
)

var expenseCmd = &cobra.Command{
	Use:     "expense",
	Aliases: []string{"exp"},
	Short:   "Log and review daily expenses",
}

var expenseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log an expense",
	RunE:  runExpenseAdd,
}

var expenseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List today's expenses (or the month's, or the most recent)",
	RunE:  runExpenseList,
}

var expenseDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an expense",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpenseDelete,
}

func init() {
	expenseAddCmd.Flags().StringVarP(&flagExpense.Amount, "amount", "a", "", "Amount spent")
	expenseAddCmd.Flags().StringVarP(&flagExpense.Category, "category", "c", "", "FOOD, TRANSPORT, ENTERTAINMENT, SERVICES, HEALTH or OTHER")
	expenseAddCmd.Flags().StringVarP(&flagExpense.Description, "description", "m", "", "What it was for")
	expenseAddCmd.Flags().StringVar(&flagExpense.Date, "date", "", "Date as YYYY-MM-DD (default: today)")

	expenseListCmd.Flags().BoolVar(&flagListMonth, "month", false, "List the whole month")
	expenseListCmd.Flags().IntVar(&flagListRecent, "recent", 0, "List the N most recent expenses")
	expenseListCmd.Flags().StringVar(&flagListDateArg, "date", "", "List a specific day (YYYY-MM-DD)")

	expenseCmd.AddCommand(expenseAddCmd, expenseListCmd, expenseDeleteCmd)
	rootCmd.AddCommand(expenseCmd)
}

func runExpenseAdd(c *cobra.Command, _ []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	cfg := loadConfig()
	m := money(cfg)

	vals := flagExpense
	if vals.Date == "" {
		vals.Date = model.DateKey(now())
	}
	vals.Category = strings.ToUpper(strings.TrimSpace(vals.Category))
	if !c.Flags().Changed("amount") {
		if vals.Category == "" {
			vals.Category = string(model.Food)
		}
		if err := tui.NewExpenseForm(&vals, m.Symbol()).Run(); err != nil {
			return err
		}
	}
	if vals.Category == "" {
		vals.Category = string(model.Other)
	}

	in, err := vals.Input()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	id, err := st.AddExpense(ctx, in.Record(sess.UserID))
	if err != nil {
		return err
	}
	fmt.Printf("\n  Expense #%d: %s on %s (%s)\n", id, m.Format(in.Amount),
		model.Category(in.Category).Label(), cli.FormatDay(in.Date))

	if in.Date == model.DateKey(now()) {
		snap, found, err := pipeline.LoadMonth(ctx, st, sess, now())
		if err != nil {
			return err
		}
		if found {
			fmt.Printf("  Spent today: %s of %s suggested\n", m.Format(snap.SpentToday), m.Format(snap.Metrics.SuggestedDailyLimit))
			printLimitAlert(snap.Alert)
		}
	} else {
		total, err := st.TotalForDate(ctx, sess.UserID, in.Date)
		if err != nil {
			return err
		}
		fmt.Printf("  Total for %s: %s\n", cli.FormatDay(in.Date), m.Format(total))
	}
	fmt.Println()
	return nil
}

func runExpenseList(_ *cobra.Command, _ []string) error {
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

	title, expenses, err := listExpenses(context.Background(), st, sess)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
	if len(expenses) == 0 {
		fmt.Println("  No expenses logged.")
		fmt.Println()
		return nil
	}

	m := money(cfg)
	rows := make([][]string, 0, len(expenses)+2)
	total := decimal.Zero
	for _, e := range expenses {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Date,
			e.Category.Label(),
			cli.Truncate(e.Description, 32),
			m.Format(e.Amount),
		})
		total = total.Add(e.Amount)
	}
	rows = append(rows, []string{"---"}, []string{"", "", "", fmt.Sprintf("Total (%d)", len(expenses)), m.Format(total)})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Date", "Category", "Description", "Amount"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func listExpenses(ctx context.Context, st *store.Store, sess config.Session) (string, []model.ExpenseRecord, error) {
	switch {
	case flagListRecent > 0:
		e, err := st.RecentExpenses(ctx, sess.UserID, flagListRecent)
		return fmt.Sprintf("RECENT EXPENSES  Last %d", flagListRecent), e, err
	case flagListMonth:
		month := model.MonthKey(now())
		e, err := st.ExpensesInMonth(ctx, sess.UserID, month)
		return "EXPENSES  " + cli.FormatMonth(month), e, err
	case flagListDateArg != "":
		e, err := st.ExpensesOnDate(ctx, sess.UserID, flagListDateArg)
		return "EXPENSES  " + cli.FormatDay(flagListDateArg), e, err
	default:
		today := model.DateKey(now())
		e, err := st.ExpensesOnDate(ctx, sess.UserID, today)
		return "TODAY'S EXPENSES  " + cli.FormatDay(today), e, err
	}
}

func runExpenseDelete(_ *cobra.Command, args []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid expense id %q", args[0])
	}

	cfg := loadConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	err = st.DeleteExpense(context.Background(), sess.UserID, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("expense #%d not found", id)
	}
	if err != nil {
		return err
	}
	fmt.Printf("  Deleted expense #%d\n", id)
	return nil
}

func printLimitAlert(a model.LimitAlert) {
	switch {
	case a.Over:
		fmt.Println("  " + cli.Paint("You are over today's suggested limit.", cli.ToneBad))
	case a.Near:
		fmt.Println("  " + cli.Paint("You are close to today's suggested limit.", cli.ToneWarn))
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/pipeline"
	"github.com/piggymobile/piggy/internal/store"
	"github.com/piggymobile/piggy/internal/tui"

	"github.com/spf13/cobra"
)

var flagPassword model.PasswordInput

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show account details and planning totals",
	RunE:  runProfile,
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the logged-in account's password",
	RunE:  runPasswd,
}

func init() {
	passwdCmd.Flags().StringVar(&flagPassword.Current, "current", "", "Current password (prompted when omitted)")
	passwdCmd.Flags().StringVar(&flagPassword.New, "new", "", "New password (prompted when omitted)")

	rootCmd.AddCommand(profileCmd, passwdCmd)
}

// profileReader is what the profile totals are read from.
type profileReader interface {
	BudgetsForUser(ctx context.Context, userID string) ([]model.BudgetRecord, error)
	RecentExpenses(ctx context.Context, userID string, limit int) ([]model.ExpenseRecord, error)
}

func loadProfile(ctx context.Context, st profileReader, sess config.Session) (model.ProfileStats, error) {
	budgets, err := st.BudgetsForUser(ctx, sess.UserID)
	if err != nil {
		return model.ProfileStats{}, err
	}
	recent, err := st.RecentExpenses(ctx, sess.UserID, store.RecentLimit)
	if err != nil {
		return model.ProfileStats{}, err
	}
	return pipeline.ComputeProfile(budgets, recent), nil
}

func runProfile(_ *cobra.Command, _ []string) error {
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

	stats, err := loadProfile(context.Background(), st, sess)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROFILE"))
	fmt.Println()
	fmt.Print(profileTable(sess, stats, money(cfg)))
	fmt.Println()
	return nil
}

func profileTable(sess config.Session, p model.ProfileStats, m *cli.Money) string {
	return cli.RenderTable(cli.Table{
		Headers: []string{"", ""},
		Rows: [][]string{
			{"Name", sess.Name},
			{"Email", sess.Email},
			{"---"},
			{"Months planned", cli.FormatNumber(int64(p.MonthsPlanned))},
			{"Total income", m.Format(p.TotalIncome)},
			{"Fixed expenses", m.Format(p.TotalFixedExpenses)},
			{"Planned savings", fmt.Sprintf("%s (%s)", m.Format(p.PlannedSavings), cli.FormatPercent(p.SavingPercentage))},
			{"---"},
			{"Recent expenses", cli.FormatNumber(int64(p.RecentExpenseCount))},
			{"Recent spend", m.Format(p.RecentExpensesTotal)},
		},
	})
}

type passwordChanger interface {
	ChangePassword(ctx context.Context, userID string, in model.PasswordInput) error
}

var errWrongPassword = errors.New("current password is incorrect")

func changePassword(ctx context.Context, st passwordChanger, sess config.Session, in model.PasswordInput) error {
	err := st.ChangePassword(ctx, sess.UserID, in)
	if errors.Is(err, store.ErrInvalidCredentials) {
		return errWrongPassword
	}
	return err
}

func runPasswd(_ *cobra.Command, _ []string) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	in := flagPassword
	if in.Current == "" || in.New == "" {
		if err := tui.NewPasswordForm(&in).Run(); err != nil {
			return err
		}
	}

	cfg := loadConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := changePassword(context.Background(), st, sess, in); err != nil {
		return err
	}
	fmt.Println("  Password changed.")
	return nil
}

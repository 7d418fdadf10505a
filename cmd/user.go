package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/store"
	"github.com/piggymobile/piggy/internal/tui"

	"github.com/spf13/cobra"
)

var flagAccount tui.AccountValues

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a local account and log in",
	RunE:  runRegister,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to an existing account",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the logged-in account",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE:  runWhoami,
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVar(&flagAccount.Email, "email", "", "Account email")
		c.Flags().StringVar(&flagAccount.Password, "password", "", "Account password (prompted when omitted)")
	}
	registerCmd.Flags().StringVar(&flagAccount.FirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&flagAccount.LastName, "last-name", "", "Last name")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
}

func runRegister(_ *cobra.Command, _ []string) error {
	vals := flagAccount
	if vals.Email == "" || vals.Password == "" || vals.FirstName == "" {
		if err := tui.NewRegisterForm(&vals).Run(); err != nil {
			return err
		}
	}

	in := model.UserInput{
		FirstName: vals.FirstName,
		LastName:  vals.LastName,
		Email:     vals.Email,
		Password:  vals.Password,
	}
	if err := in.Validate(); err != nil {
		return err
	}

	cfg := loadConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	u, err := st.CreateUser(context.Background(), in)
	if errors.Is(err, store.ErrEmailTaken) {
		return fmt.Errorf("%s is already registered, try `piggy login`", in.Email)
	}
	if err != nil {
		return err
	}

	if err := saveSession(u); err != nil {
		return err
	}
	fmt.Printf("\n  Welcome, %s! You are logged in as %s.\n", u.FirstName, u.Email)
	fmt.Println("  Next: `piggy budget set` to plan this month.")
	fmt.Println()
	return nil
}

func runLogin(_ *cobra.Command, _ []string) error {
	vals := flagAccount
	if vals.Email == "" || vals.Password == "" {
		if err := tui.NewLoginForm(&vals).Run(); err != nil {
			return err
		}
	}

	cfg := loadConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	u, err := st.Authenticate(context.Background(), vals.Email, vals.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		return errors.New("invalid email or password")
	}
	if err != nil {
		return err
	}

	if err := saveSession(u); err != nil {
		return err
	}
	fmt.Printf("\n  Logged in as %s (%s)\n\n", u.FullName(), u.Email)
	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	if err := config.ClearSession(); err != nil {
		return err
	}
	fmt.Println("  Logged out.")
	return nil
}

func runWhoami(_ *cobra.Command, _ []string) error {
	sess, err := config.LoadSession()
	if err != nil {
		return err
	}
	if !sess.LoggedIn() {
		fmt.Println("  Not logged in. Run `piggy login` or `piggy register`.")
		return nil
	}
	fmt.Printf("  %s <%s>\n", sess.Name, sess.Email)
	fmt.Printf("  Logged in since %s\n", sess.LoggedAt.Local().Format("2006-01-02 15:04"))
	fmt.Println("  See `piggy profile` for your planning totals.")
	return nil
}

func saveSession(u model.User) error {
	return config.SaveSession(config.Session{
		UserID:   u.ID,
		Email:    u.Email,
		Name:     u.FullName(),
		LoggedAt: now(),
	})
}

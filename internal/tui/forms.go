package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/model"
	"github.com/piggymobile/piggy/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
)

// BudgetValues backs the budget form. Amounts stay as typed until Input.
type BudgetValues struct {
	Month     string
	Income    string
	Rent      string
	Utilities string
	Transport string
	Other     string
	Modality  string
}

// NewBudgetValues prefills the form from an existing record.
func NewBudgetValues(b model.BudgetRecord) BudgetValues {
	v := BudgetValues{Month: b.Month, Modality: string(b.Modality)}
	if v.Modality == "" {
		v.Modality = string(model.Balanced)
	}
	if b.ID != 0 {
		v.Income = b.Income.String()
		v.Rent = b.Rent.String()
		v.Utilities = b.Utilities.String()
		v.Transport = b.Transport.String()
		v.Other = b.Other.String()
	}
	return v
}

// Input parses the form values. Empty amounts count as zero.
func (v BudgetValues) Input() (model.BudgetInput, error) {
	in := model.BudgetInput{Month: v.Month, Modality: v.Modality}
	targets := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"income", v.Income, &in.Income},
		{"rent", v.Rent, &in.Rent},
		{"utilities", v.Utilities, &in.Utilities},
		{"transport", v.Transport, &in.Transport},
		{"other", v.Other, &in.Other},
	}
	for _, t := range targets {
		d, err := optionalAmount(t.raw)
		if err != nil {
			return in, fmt.Errorf("%s: %w", t.name, err)
		}
		*t.dst = d
	}
	return in, in.Validate()
}

// ExpenseValues backs the expense form.
type ExpenseValues struct {
	Date        string
	Category    string
	Amount      string
	Description string
}

// Input parses the form values.
func (v ExpenseValues) Input() (model.ExpenseInput, error) {
	amount, err := cli.ParseAmount(v.Amount)
	if err != nil {
		return model.ExpenseInput{}, err
	}
	in := model.ExpenseInput{
		Date:        v.Date,
		Category:    v.Category,
		Amount:      amount,
		Description: strings.TrimSpace(v.Description),
	}
	return in, in.Validate()
}

// AccountValues backs the register and login forms.
type AccountValues struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// SetupValues backs the first-run configuration form.
type SetupValues struct {
	Currency string
	Locale   string
	Theme    string
	Reminder bool
}

// NewSetupValues prefills the setup form from cfg.
func NewSetupValues(cfg config.Config) SetupValues {
	return SetupValues{
		Currency: cfg.General.Currency,
		Locale:   cfg.General.Locale,
		Theme:    cfg.Appearance.Theme,
		Reminder: cfg.Reminder.Enabled,
	}
}

// Apply copies the answers onto cfg. An empty locale keeps the current one.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.General.Currency = strings.ToUpper(strings.TrimSpace(v.Currency))
	if loc := strings.TrimSpace(v.Locale); loc != "" {
		cfg.General.Locale = loc
	}
	cfg.Appearance.Theme = v.Theme
	cfg.Reminder.Enabled = v.Reminder
}

func optionalAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return cli.ParseAmount(s)
}

func validateOptionalAmount(s string) error {
	d, err := optionalAmount(s)
	if err != nil {
		return err
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func validatePositiveAmount(s string) error {
	d, err := cli.ParseAmount(s)
	if err != nil {
		return err
	}
	if !d.IsPositive() {
		return errors.New("must be greater than zero")
	}
	return nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func modalityOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(model.Modalities))
	for _, m := range model.Modalities {
		label := fmt.Sprintf("%s (save %.0f%%)", m.Label(), m.GoalPercent())
		opts = append(opts, huh.NewOption(label, string(m)))
	}
	return opts
}

func categoryOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(model.Categories))
	for _, c := range model.Categories {
		opts = append(opts, huh.NewOption(c.Label(), string(c)))
	}
	return opts
}

// NewBudgetForm builds the budget form. symbol labels the amount fields.
func NewBudgetForm(v *BudgetValues, symbol string) *huh.Form {
	amount := func(title string, dst *string) *huh.Input {
		return huh.NewInput().
			Title(title).
			Prompt(symbol + " ").
			Value(dst).
			Validate(validateOptionalAmount)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Month").
				Description("YYYY-MM").
				Value(&v.Month).
				Validate(required("month")),
			amount("Monthly income", &v.Income),
		),
		huh.NewGroup(
			amount("Rent", &v.Rent),
			amount("Utilities", &v.Utilities),
			amount("Transport", &v.Transport),
			amount("Other fixed expenses", &v.Other),
		).Title("Fixed expenses"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Saving modality").
				Options(modalityOptions()...).
				Value(&v.Modality),
		),
	).WithTheme(huh.ThemeBase16())
}

// NewExpenseForm builds the expense form.
func NewExpenseForm(v *ExpenseValues, symbol string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount").
				Prompt(symbol+" ").
				Value(&v.Amount).
				Validate(validatePositiveAmount),
			huh.NewSelect[string]().
				Title("Category").
				Options(categoryOptions()...).
				Value(&v.Category),
			huh.NewInput().
				Title("Description").
				CharLimit(200).
				Value(&v.Description),
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD").
				Value(&v.Date).
				Validate(required("date")),
		),
	).WithTheme(huh.ThemeBase16())
}

// NewRegisterForm builds the account registration form.
func NewRegisterForm(v *AccountValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("First name").Value(&v.FirstName).Validate(required("first name")),
			huh.NewInput().Title("Last name").Value(&v.LastName),
			huh.NewInput().Title("Email").Value(&v.Email).Validate(required("email")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&v.Password).
				Validate(func(s string) error {
					if len(s) < 6 {
						return errors.New("password must be at least 6 characters")
					}
					return nil
				}),
		).Title("Create your account"),
	).WithTheme(huh.ThemeBase16())
}

// NewLoginForm builds the login form.
func NewLoginForm(v *AccountValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&v.Email).Validate(required("email")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&v.Password),
		).Title("Log in"),
	).WithTheme(huh.ThemeBase16())
}

// NewPasswordForm prompts for the current and the new password.
func NewPasswordForm(v *model.PasswordInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Current password").EchoMode(huh.EchoModePassword).
				Value(&v.Current).Validate(required("current password")),
			huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).
				Value(&v.New).Validate(required("new password")),
		).Title("Change password"),
	).WithTheme(huh.ThemeBase16())
}

// NewSetupForm builds the first-run configuration form.
func NewSetupForm(v *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to piggy!").
				Description("Let's set up a few things.\nPress Enter to continue."),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Currency").
				Description("ISO 4217 code, e.g. GTQ, USD, EUR").
				Value(&v.Currency).
				Validate(func(s string) error {
					if _, err := cli.NewMoney(s, "en"); err != nil {
						return err
					}
					return nil
				}),
			huh.NewInput().
				Title("Locale").
				Description("BCP 47 tag for number formatting, e.g. es-GT").
				Value(&v.Locale),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
			huh.NewConfirm().
				Title("Remind me to log expenses every evening?").
				Value(&v.Reminder),
		),
	).WithTheme(huh.ThemeDracula())
}

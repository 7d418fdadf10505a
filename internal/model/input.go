package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("modality", func(fl validator.FieldLevel) bool {
		return Modality(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	return v
}

// BudgetInput is the user-entered form for a month's budget.
// Amounts are validated separately since validator has no decimal support.
type BudgetInput struct {
	Month     string `validate:"required,datetime=2006-01"`
	Income    decimal.Decimal
	Rent      decimal.Decimal
	Utilities decimal.Decimal
	Transport decimal.Decimal
	Other     decimal.Decimal
	Modality  string `validate:"required,modality"`
}

// Validate checks the form and returns the first problem found.
func (in BudgetInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return humanize(err)
	}
	fields := []struct {
		name string
		v    decimal.Decimal
	}{
		{"income", in.Income},
		{"rent", in.Rent},
		{"utilities", in.Utilities},
		{"transport", in.Transport},
		{"other", in.Other},
	}
	for _, f := range fields {
		if f.v.IsNegative() {
			return fmt.Errorf("%s must not be negative", f.name)
		}
	}
	return nil
}

// Record converts the input into a BudgetRecord owned by userID.
func (in BudgetInput) Record(userID string) BudgetRecord {
	return BudgetRecord{
		UserID:    userID,
		Month:     in.Month,
		Income:    in.Income,
		Rent:      in.Rent,
		Utilities: in.Utilities,
		Transport: in.Transport,
		Other:     in.Other,
		Modality:  Modality(in.Modality),
	}
}

// ExpenseInput is the user-entered form for a single expense.
type ExpenseInput struct {
	Date        string `validate:"required,datetime=2006-01-02"`
	Category    string `validate:"required,category"`
	Amount      decimal.Decimal
	Description string `validate:"max=200"`
}

// Validate checks the form and returns the first problem found.
func (in ExpenseInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return humanize(err)
	}
	if !in.Amount.IsPositive() {
		return errors.New("amount must be greater than zero")
	}
	return nil
}

// Record converts the input into an ExpenseRecord owned by userID.
func (in ExpenseInput) Record(userID string) ExpenseRecord {
	return ExpenseRecord{
		UserID:      userID,
		Date:        in.Date,
		Category:    Category(in.Category),
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
	}
}

// UserInput is the registration form.
type UserInput struct {
	FirstName string `validate:"required,max=60"`
	LastName  string `validate:"max=60"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=6"`
}

// Validate checks the form and returns the first problem found.
func (in UserInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return humanize(err)
	}
	return nil
}

// PasswordInput is the change-password form.
type PasswordInput struct {
	Current string `validate:"required"`
	New     string `validate:"required,min=6,nefield=Current"`
}

// Validate checks the form and returns the first problem found.
func (in PasswordInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return humanize(err)
	}
	return nil
}

// humanize turns the first validator failure into a short message.
func humanize(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "datetime":
		return fmt.Errorf("%s must match %s", field, fe.Param())
	case "email":
		return fmt.Errorf("%s is not a valid email address", field)
	case "min":
		return fmt.Errorf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", field, fe.Param())
	case "nefield":
		return fmt.Errorf("%s must differ from %s", field, strings.ToLower(fe.Param()))
	case "modality":
		return fmt.Errorf("unknown modality %q", fe.Value())
	case "category":
		return fmt.Errorf("unknown category %q", fe.Value())
	default:
		return fmt.Errorf("%s is invalid (%s)", field, fe.Tag())
	}
}

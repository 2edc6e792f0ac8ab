package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Money struct {
		Cents int64
	}

	// Category is a row of the category registry. Categories referenced by
	// transactions are never physically deleted, only deactivated.
	Category struct {
		ID       int64
		Name     string
		Color    string
		IsIncome bool
		IsActive bool
	}

	// MonthlyBudget is the spending limit for one category in one month.
	// At most one row exists per (CategoryID, Month).
	MonthlyBudget struct {
		ID         int64
		CategoryID int64
		Month      Month
		Limit      Money
	}

	// Transaction is a signed ledger entry. The sign of Amount is the sole
	// income/expense discriminator: positive is income, negative is expense.
	Transaction struct {
		ID         int64
		CategoryID int64
		CardID     *int64
		Date       time.Time
		Amount     Money
		Notes      string
	}

	// Card is an optional payment-method reference for transactions.
	Card struct {
		ID       int64
		Name     string
		IsActive bool
	}

	// BudgetRow is one line of a month summary. It is derived, never stored.
	// Virtual rows (total income, tithe, split sub-buckets) carry CategoryID 0.
	BudgetRow struct {
		CategoryID int64
		Name       string
		Color      string
		IsIncome   bool
		Virtual    bool
		Limit      Money
		Spent      Money // always >= 0
		Income     Money // always >= 0
		Remaining  Money // Limit - Spent, negative on overspend
	}

	// MonthlySummary totals a month's ledger.
	MonthlySummary struct {
		Month         Month
		TotalIncome   Money
		TotalExpenses Money
		Net           Money
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeLimit    = errors.New("budget limit cannot be negative")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrNotFound         = errors.New("not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category is referenced by transactions")
	ErrCardInUse        = errors.New("card is referenced by transactions")
	ErrDuplicateName    = errors.New("name already exists")
)

const maxNameLength = 100

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > maxNameLength {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

func (b MonthlyBudget) Validate() error {
	if err := b.Month.Validate(); err != nil {
		return err
	}
	if b.Limit.Cents < 0 {
		return ErrNegativeLimit
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.CategoryID <= 0 {
		return ErrCategoryNotFound
	}
	if t.Date.IsZero() {
		return errors.New("transaction date cannot be zero")
	}
	if t.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	if len(t.Notes) > 500 {
		return errors.New("notes too long (max 500 characters)")
	}
	return nil
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > maxNameLength {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

// IsExpense reports whether the entry reduces a category's budget.
func (t Transaction) IsExpense() bool {
	return t.Amount.Cents < 0
}

// Abs returns the unsigned magnitude of the amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

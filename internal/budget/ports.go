package budget

import (
	"context"

	"bilancio/internal/core"
)

// Ports consumed by the budget engine. The storage layer implements all
// three; tests substitute in-memory fakes.
type (
	// CategoryRegistry is the authoritative list of categories.
	CategoryRegistry interface {
		ListActiveCategories(ctx context.Context) ([]core.Category, error)
	}

	// BudgetStore persists per-(category, month) spending limits. The store
	// enforces uniqueness on (category_id, month); InsertBudgetIfAbsent
	// reports whether a row was created and treats a lost insert race as a
	// benign no-op, never as an error.
	BudgetStore interface {
		GetBudgetsForMonth(ctx context.Context, month core.Month) ([]core.MonthlyBudget, error)
		GetLatestBudgetBefore(ctx context.Context, categoryID int64, month core.Month) (*core.MonthlyBudget, error)
		InsertBudgetIfAbsent(ctx context.Context, categoryID int64, month core.Month, limit core.Money) (created bool, err error)
	}

	// TransactionLedger provides signed per-category sums for one month.
	TransactionLedger interface {
		SumSignedByCategory(ctx context.Context, month core.Month) (map[int64]CategoryTotals, error)
	}
)

// CategoryTotals is one category's month activity. Expense carries the
// absolute value of the negative amounts, so both fields are >= 0.
type CategoryTotals struct {
	Income  core.Money
	Expense core.Money
}

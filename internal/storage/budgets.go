package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
)

// GetBudgetsForMonth implements budget.BudgetStore.
func (r *SQLiteRepository) GetBudgetsForMonth(ctx context.Context, month core.Month) ([]core.MonthlyBudget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category_id, month, limit_cents FROM monthly_budgets WHERE month = ?`,
		month.String())
	if err != nil {
		return nil, fmt.Errorf("get budgets for month: %w", err)
	}
	defer rows.Close()

	var budgets []core.MonthlyBudget
	for rows.Next() {
		b, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// GetLatestBudgetBefore implements budget.BudgetStore. It returns nil
// without error when the category has no budget in any earlier month.
// Months are stored as "YYYY-MM" text, so lexical order is chronological.
func (r *SQLiteRepository) GetLatestBudgetBefore(ctx context.Context, categoryID int64, month core.Month) (*core.MonthlyBudget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, category_id, month, limit_cents FROM monthly_budgets
		 WHERE category_id = ? AND month < ?
		 ORDER BY month DESC LIMIT 1`,
		categoryID, month.String())

	b, err := scanBudget(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// InsertBudgetIfAbsent implements budget.BudgetStore. The UNIQUE
// (category_id, month) constraint makes concurrent resolution safe:
// whichever insert lands first wins and the loser observes created=false.
func (r *SQLiteRepository) InsertBudgetIfAbsent(ctx context.Context, categoryID int64, month core.Month, limit core.Money) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO monthly_budgets (category_id, month, limit_cents) VALUES (?, ?, ?)`,
		categoryID, month.String(), limit.Cents)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, core.ErrCategoryNotFound
		}
		return false, fmt.Errorf("insert budget: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert budget rows: %w", err)
	}
	return affected > 0, nil
}

// UpsertBudget sets an explicit limit, creating or overwriting the row.
// This is the user-edit path; lazy resolution only ever fills gaps.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, categoryID int64, month core.Month, limit core.Money) (*core.MonthlyBudget, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO monthly_budgets (category_id, month, limit_cents) VALUES (?, ?, ?)
		 ON CONFLICT (category_id, month) DO UPDATE SET limit_cents = excluded.limit_cents`,
		categoryID, month.String(), limit.Cents)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, core.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("upsert budget: %w", err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, category_id, month, limit_cents FROM monthly_budgets
		 WHERE category_id = ? AND month = ?`,
		categoryID, month.String())
	b, err := scanBudget(row.Scan)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Budget limit set",
		"category_id", categoryID,
		"month", month.String(),
		"limit_cents", limit.Cents)
	return &b, nil
}

func scanBudget(scan func(...any) error) (core.MonthlyBudget, error) {
	var (
		b        core.MonthlyBudget
		monthStr string
	)
	if err := scan(&b.ID, &b.CategoryID, &monthStr, &b.Limit.Cents); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return b, err
		}
		return b, fmt.Errorf("scan budget: %w", err)
	}

	month, err := core.ParseMonth(monthStr)
	if err != nil {
		return b, fmt.Errorf("budget month %q: %w", monthStr, err)
	}
	b.Month = month
	return b, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
)

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (*core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, color, is_income, is_active) VALUES (?, ?, ?, 1)`,
		c.Name, c.Color, c.IsIncome)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrDuplicateName
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("category insert id: %w", err)
	}

	c.ID = id
	c.IsActive = true
	slog.InfoContext(ctx, "Category created", "id", c.ID, "name", c.Name)
	return &c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (*core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, color, is_income, is_active FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Color, &c.IsIncome, &c.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	return r.listCategories(ctx,
		`SELECT id, name, color, is_income, is_active FROM categories ORDER BY name, id`)
}

// ListActiveCategories implements budget.CategoryRegistry.
func (r *SQLiteRepository) ListActiveCategories(ctx context.Context) ([]core.Category, error) {
	return r.listCategories(ctx,
		`SELECT id, name, color, is_income, is_active FROM categories WHERE is_active = 1 ORDER BY name, id`)
}

func (r *SQLiteRepository) listCategories(ctx context.Context, query string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.IsIncome, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (*core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, color = ?, is_income = ?, is_active = ? WHERE id = ?`,
		c.Name, c.Color, c.IsIncome, c.IsActive, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrDuplicateName
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update category rows: %w", err)
	}
	if affected == 0 {
		return nil, core.ErrCategoryNotFound
	}
	return &c, nil
}

// DeleteCategory removes a category and its budget rows. Categories still
// referenced by transactions are rejected; callers deactivate those instead.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	var refs int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if refs > 0 {
		return core.ErrCategoryInUse
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_budgets WHERE category_id = ?`, id); err != nil {
		return fmt.Errorf("delete category budgets: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows: %w", err)
	}
	if affected == 0 {
		return core.ErrCategoryNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete category: %w", err)
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

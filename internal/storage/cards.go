package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
)

func (r *SQLiteRepository) CreateCard(ctx context.Context, c core.Card) (*core.Card, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cards (name, is_active) VALUES (?, 1)`, c.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrDuplicateName
		}
		return nil, fmt.Errorf("insert card: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("card insert id: %w", err)
	}

	c.ID = id
	c.IsActive = true
	slog.InfoContext(ctx, "Card created", "id", c.ID, "name", c.Name)
	return &c, nil
}

func (r *SQLiteRepository) GetCard(ctx context.Context, id int64) (*core.Card, error) {
	var c core.Card
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, is_active FROM cards WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	return &c, nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, is_active FROM cards ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []core.Card
	for rows.Next() {
		var c core.Card
		if err := rows.Scan(&c.ID, &c.Name, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *SQLiteRepository) UpdateCard(ctx context.Context, c core.Card) (*core.Card, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cards SET name = ?, is_active = ? WHERE id = ?`,
		c.Name, c.IsActive, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrDuplicateName
		}
		return nil, fmt.Errorf("update card: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update card rows: %w", err)
	}
	if affected == 0 {
		return nil, core.ErrNotFound
	}
	return &c, nil
}

// DeleteCard removes a card unless transactions reference it.
func (r *SQLiteRepository) DeleteCard(ctx context.Context, id int64) error {
	var refs int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE card_id = ?`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count card references: %w", err)
	}
	if refs > 0 {
		return core.ErrCardInUse
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete card rows: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Card deleted", "id", id)
	return nil
}

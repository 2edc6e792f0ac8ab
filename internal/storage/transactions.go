package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/budget"
	"bilancio/internal/core"
)

// PendingSyncTransaction is the minimal row the sync worker needs to build
// a queue message for a transaction that has not reached the mirror yet.
type PendingSyncTransaction struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (*core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (category_id, card_id, transaction_date, amount_cents, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		t.CategoryID, t.CardID, t.Date.Format(dateLayout), t.Amount.Cents, t.Notes)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, core.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("transaction insert id: %w", err)
	}

	t.ID = id
	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"category_id", t.CategoryID,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.Format(dateLayout))
	return &t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, category_id, card_id, transaction_date, amount_cents, notes
		 FROM transactions WHERE id = ?`, id)

	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *SQLiteRepository) ListTransactionsForMonth(ctx context.Context, month core.Month) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category_id, card_id, transaction_date, amount_cents, notes
		 FROM transactions
		 WHERE strftime('%Y-%m', transaction_date) = ?
		 ORDER BY transaction_date DESC, id DESC`,
		month.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// UpdateTransaction rewrites the row, bumps its version and requeues it for
// the mirror sync.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (*core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET category_id = ?, card_id = ?, transaction_date = ?, amount_cents = ?, notes = ?,
		     sync_status = 'pending', version = version + 1
		 WHERE id = ?`,
		t.CategoryID, t.CardID, t.Date.Format(dateLayout), t.Amount.Cents, t.Notes, t.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, core.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update transaction rows: %w", err)
	}
	if affected == 0 {
		return nil, core.ErrNotFound
	}
	return &t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// SumSignedByCategory implements budget.TransactionLedger. Income and
// expense magnitudes are summed separately so a refund in an expense
// category never hides spending.
func (r *SQLiteRepository) SumSignedByCategory(ctx context.Context, month core.Month) (map[int64]budget.CategoryTotals, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id,
		        COALESCE(SUM(CASE WHEN amount_cents > 0 THEN amount_cents ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN amount_cents < 0 THEN -amount_cents ELSE 0 END), 0)
		 FROM transactions
		 WHERE strftime('%Y-%m', transaction_date) = ?
		 GROUP BY category_id`,
		month.String())
	if err != nil {
		return nil, fmt.Errorf("sum transactions by category: %w", err)
	}
	defer rows.Close()

	totals := make(map[int64]budget.CategoryTotals)
	for rows.Next() {
		var (
			categoryID      int64
			income, expense int64
		)
		if err := rows.Scan(&categoryID, &income, &expense); err != nil {
			return nil, fmt.Errorf("scan category totals: %w", err)
		}
		totals[categoryID] = budget.CategoryTotals{
			Income:  core.Money{Cents: income},
			Expense: core.Money{Cents: expense},
		}
	}
	return totals, rows.Err()
}

// ListPendingSync returns transactions waiting for the mirror, oldest first.
func (r *SQLiteRepository) ListPendingSync(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version, created_at FROM transactions
		 WHERE sync_status = 'pending'
		 ORDER BY created_at, id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncTransaction
	for rows.Next() {
		var (
			p         PendingSyncTransaction
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Version, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending sync: %w", err)
		}
		ts, err := parseTimestamp(createdAt)
		if err != nil {
			return nil, fmt.Errorf("pending sync created_at %q: %w", createdAt, err)
		}
		p.CreatedAt = ts
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = 'synced' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = 'error' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

func scanTransaction(scan func(...any) error) (core.Transaction, error) {
	var (
		t       core.Transaction
		dateStr string
		cardID  sql.NullInt64
	)
	if err := scan(&t.ID, &t.CategoryID, &cardID, &dateStr, &t.Amount.Cents, &t.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan transaction: %w", err)
	}

	date, err := parseDate(dateStr)
	if err != nil {
		return t, fmt.Errorf("transaction date %q: %w", dateStr, err)
	}
	t.Date = date
	if cardID.Valid {
		t.CardID = &cardID.Int64
	}
	return t, nil
}

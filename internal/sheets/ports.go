// Package sheets defines the outbound ports for the ledger mirror. The
// mirror is a read-only copy of the transaction ledger kept on a
// spreadsheet; SQLite stays the source of truth.
package sheets

import (
	"context"
	"time"
)

// LedgerRow is one mirrored transaction. Category and card are carried by
// name so the spreadsheet stays readable without joins.
type LedgerRow struct {
	TransactionID int64
	Date          time.Time
	Category      string
	Card          string
	AmountCents   int64
	Notes         string
}

type (
	// LedgerWriter upserts one row on the mirror, keyed by transaction ID.
	LedgerWriter interface {
		Upsert(ctx context.Context, row LedgerRow) (rowRef string, err error)
	}

	// LedgerDeleter removes a mirrored row by transaction ID. Deleting a
	// row that was never mirrored is a no-op.
	LedgerDeleter interface {
		Delete(ctx context.Context, transactionID int64) error
	}
)

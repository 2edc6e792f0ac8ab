// Package worker keeps the spreadsheet mirror in step with the SQLite
// ledger. Queue messages drive the common path; a periodic pending scan
// recovers anything a lost message left behind.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/sheets"
	"bilancio/internal/storage"
)

// Store is the slice of the repository the worker needs.
type Store interface {
	GetTransaction(ctx context.Context, id int64) (*core.Transaction, error)
	GetCategory(ctx context.Context, id int64) (*core.Category, error)
	GetCard(ctx context.Context, id int64) (*core.Card, error)
	ListPendingSync(ctx context.Context, limit int) ([]storage.PendingSyncTransaction, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker pushes transactions from SQLite to the ledger mirror.
type SyncWorker struct {
	store     Store
	writer    sheets.LedgerWriter
	deleter   sheets.LedgerDeleter
	batchSize int
}

func NewSyncWorker(store Store, writer sheets.LedgerWriter, deleter sheets.LedgerDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single queue message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version,
		"op", msg.Op)

	if msg.Op == amqp.OpDelete {
		return w.deleteFromMirror(ctx, msg.ID)
	}
	return w.syncTransaction(ctx, msg.ID)
}

func (w *SyncWorker) deleteFromMirror(ctx context.Context, id int64) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "No ledger deleter configured, skipping mirror deletion", "id", id)
		return nil
	}
	if err := w.deleter.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete from mirror: %w", err)
	}
	return nil
}

func (w *SyncWorker) syncTransaction(ctx context.Context, id int64) error {
	tx, err := w.store.GetTransaction(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// The transaction was deleted before this message arrived. The
		// delete message will clean the mirror; nothing to upsert.
		slog.InfoContext(ctx, "Transaction gone before sync, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	row, err := w.buildRow(ctx, tx)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return err
	}

	ref, err := w.writer.Upsert(ctx, row)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("upsert to mirror: %w", err)
	}

	if err := w.store.MarkSynced(ctx, id); err != nil {
		// The mirror write succeeded; the pending scan will retry the mark.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"id", id,
		"sheets_ref", ref,
		"amount_cents", tx.Amount.Cents)
	return nil
}

func (w *SyncWorker) buildRow(ctx context.Context, tx *core.Transaction) (sheets.LedgerRow, error) {
	category, err := w.store.GetCategory(ctx, tx.CategoryID)
	if err != nil {
		return sheets.LedgerRow{}, fmt.Errorf("get category %d: %w", tx.CategoryID, err)
	}

	cardName := ""
	if tx.CardID != nil {
		card, err := w.store.GetCard(ctx, *tx.CardID)
		if err != nil {
			return sheets.LedgerRow{}, fmt.Errorf("get card %d: %w", *tx.CardID, err)
		}
		cardName = card.Name
	}

	return sheets.LedgerRow{
		TransactionID: tx.ID,
		Date:          tx.Date,
		Category:      category.Name,
		Card:          cardName,
		AmountCents:   tx.Amount.Cents,
		Notes:         tx.Notes,
	}, nil
}

// ProcessPendingTransactions mirrors any rows still marked pending. This is
// the backup path for lost queue messages.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger pending backlog once at worker startup,
// recovering from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) error {
	pending, err := w.store.ListPendingSync(ctx, limit)
	if err != nil {
		return fmt.Errorf("list pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	synced, failed := 0, 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.syncTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending transaction",
				"id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending sync pass completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

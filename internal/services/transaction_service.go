package services

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// SyncPublisher publishes mirror sync messages. The AMQP client satisfies
// it; a nil publisher means local-only operation.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id, version int64) error
	PublishTransactionDelete(ctx context.Context, id int64) error
}

// TransactionService writes ledger entries. Amounts arrive as unsigned
// magnitudes; the category decides the sign, so an expense category can
// never accidentally record income.
type TransactionService struct {
	storage   *storage.SQLiteRepository
	publisher SyncPublisher
}

func NewTransactionService(storage *storage.SQLiteRepository, publisher SyncPublisher) *TransactionService {
	return &TransactionService{
		storage:   storage,
		publisher: publisher,
	}
}

// Create stores a transaction. t.Amount carries the magnitude; the sign is
// derived from the category's income flag at write time.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (*core.Transaction, error) {
	signed, err := s.applySign(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := signed.Validate(); err != nil {
		return nil, err
	}

	created, err := s.storage.CreateTransaction(ctx, signed)
	if err != nil {
		return nil, fmt.Errorf("save transaction: %w", err)
	}

	s.publishSync(ctx, created.ID, 1)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (*core.Transaction, error) {
	return s.storage.GetTransaction(ctx, id)
}

func (s *TransactionService) ListForMonth(ctx context.Context, month core.Month) ([]core.Transaction, error) {
	if err := month.Validate(); err != nil {
		return nil, err
	}
	return s.storage.ListTransactionsForMonth(ctx, month)
}

// Update rewrites a transaction, re-deriving the sign in case the category
// changed.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (*core.Transaction, error) {
	signed, err := s.applySign(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := signed.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.storage.UpdateTransaction(ctx, signed)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	// The repository bumped the version; fetch-on-sync means the exact
	// number in the message only has to be monotonic, not precise.
	s.publishSync(ctx, updated.ID, 2)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publishDelete(ctx, id)
	return nil
}

// applySign forces the amount's sign to match the category kind. Input
// amounts are magnitudes; zero is rejected later by Validate.
func (s *TransactionService) applySign(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	category, err := s.storage.GetCategory(ctx, t.CategoryID)
	if err != nil {
		return t, err
	}

	magnitude := t.Amount.Abs()
	if category.IsIncome {
		t.Amount = magnitude
	} else {
		t.Amount = core.Money{Cents: -magnitude.Cents}
	}
	return t, nil
}

// Queue publishes are best effort: the row is already durable in SQLite
// and the worker's pending scan recovers lost messages.
func (s *TransactionService) publishSync(ctx context.Context, id, version int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No sync publisher configured, skipping sync message", "id", id)
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
}

func (s *TransactionService) publishDelete(ctx context.Context, id int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No sync publisher configured, skipping delete message", "id", id)
		return
	}
	if err := s.publisher.PublishTransactionDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
	}
}

// Package memory is an in-memory ledger mirror for tests and local
// development without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bilancio/internal/sheets"
)

type Mirror struct {
	mu   sync.Mutex
	rows map[int64]sheets.LedgerRow
}

var (
	_ sheets.LedgerWriter  = (*Mirror)(nil)
	_ sheets.LedgerDeleter = (*Mirror)(nil)
)

func NewMirror() *Mirror {
	return &Mirror{rows: make(map[int64]sheets.LedgerRow)}
}

func (m *Mirror) Upsert(ctx context.Context, row sheets.LedgerRow) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[row.TransactionID] = row
	return fmt.Sprintf("memory:%d", row.TransactionID), nil
}

func (m *Mirror) Delete(ctx context.Context, transactionID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, transactionID)
	return nil
}

// Row returns the mirrored row for a transaction, if any.
func (m *Mirror) Row(transactionID int64) (sheets.LedgerRow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[transactionID]
	return row, ok
}

// Len returns the number of mirrored rows.
func (m *Mirror) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

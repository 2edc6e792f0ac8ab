package amqp

import (
	"encoding/json"
	"time"
)

// Sync message operations. Upsert tells the worker to (re)write a ledger
// row on the mirror; delete tells it to remove the row.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// TransactionSyncMessage is a lightweight queue message: just the
// transaction ID, its version and the operation. The worker fetches the
// full row from the database, so a stale message can never overwrite a
// newer edit.
type TransactionSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionSyncMessage creates an upsert message for a transaction
func NewTransactionSyncMessage(id, version int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Version:   version,
		Op:        OpUpsert,
		Timestamp: time.Now(),
	}
}

// NewTransactionDeleteMessage creates a delete message for a transaction
func NewTransactionDeleteMessage(id int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Op:        OpDelete,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON creates a message from JSON bytes
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

package models

import "encoding/json"

// WriteOp is the kind of mutation a WriteChange carries.
type WriteOp string

const (
	WriteInsert WriteOp = "insert"
	WriteUpdate WriteOp = "update"
	WriteDelete WriteOp = "delete"
)

// WriteChange is one pending mutation against the remote store, as produced
// by the application's local change queue. The id is client-assigned and
// stable across retries. Payload field names use the client's camelCase
// convention; the replication engine normalizes them.
type WriteChange struct {
	ID         string          `json:"id"`
	Table      string          `json:"table"`
	Op         WriteOp         `json:"op"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  int64           `json:"created_at"`
	Status     string          `json:"status"`
	RetryCount int             `json:"retry_count"`
}

// WriteResult is the outcome for one WriteChange. Data holds the resulting
// remote row translated back to map form; Error holds a message when
// Success is false. Exactly one result is produced per submitted change,
// in submission order.
type WriteResult struct {
	ID      string         `json:"id"`
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

package replicate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// MockStore is an in-memory implementation of RemoteStore for testing.
// Rows are stored in translated map form, keyed by table and a string
// rendering of the conflict key.
type MockStore struct {
	// Tables stores rows by table name, keyed by conflict key.
	Tables map[string]map[string]map[string]any
	// Err can be set to make every method return an error
	Err error
	// Closed records whether Close was called
	Closed bool
}

// NewMockStore creates a new MockStore for testing.
func NewMockStore() *MockStore {
	return &MockStore{Tables: make(map[string]map[string]map[string]any)}
}

// Seed inserts a row directly, keyed by its id field.
func (m *MockStore) Seed(table string, row map[string]any) {
	if m.Tables[table] == nil {
		m.Tables[table] = make(map[string]map[string]any)
	}
	m.Tables[table][fmt.Sprint(row["id"])] = row
}

// Row returns a stored row by id, or nil.
func (m *MockStore) Row(table, id string) map[string]any {
	return m.Tables[table][id]
}

// Insert stores a row under the conflict policy.
func (m *MockStore) Insert(_ context.Context, table string, row map[string]any, policy ConflictPolicy) (map[string]any, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Tables[table] == nil {
		m.Tables[table] = make(map[string]map[string]any)
	}

	stored := make(map[string]any, len(row))
	for k, v := range row {
		stored[k] = plainValue(v)
	}

	key := conflictKey(stored, policy.Columns)
	if _, exists := m.Tables[table][key]; exists && !policy.Overwrite {
		return nil, nil // idempotent skip
	}
	m.Tables[table][key] = stored
	return stored, nil
}

// UpdatedAt reads the LWW timestamp of a row.
func (m *MockStore) UpdatedAt(_ context.Context, table string, id any) (int64, bool, error) {
	if m.Err != nil {
		return 0, false, m.Err
	}
	row, ok := m.Tables[table][fmt.Sprint(plainValue(id))]
	if !ok {
		return 0, false, nil
	}
	ts, _ := asInt64(row["updated_at"])
	return ts, true, nil
}

// Fetch returns a row by id, or nil.
func (m *MockStore) Fetch(_ context.Context, table string, id any) (map[string]any, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tables[table][fmt.Sprint(plainValue(id))], nil
}

// Update overwrites the given columns of a row.
func (m *MockStore) Update(_ context.Context, table string, id any, fields map[string]any) (map[string]any, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	row, ok := m.Tables[table][fmt.Sprint(plainValue(id))]
	if !ok {
		return nil, fmt.Errorf("row not found")
	}
	for k, v := range fields {
		row[k] = plainValue(v)
	}
	return row, nil
}

// Delete removes a row by id. Absent rows return (nil, nil).
func (m *MockStore) Delete(_ context.Context, table string, id uuid.UUID) (map[string]any, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	key := id.String()
	row, ok := m.Tables[table][key]
	if !ok {
		return nil, nil
	}
	delete(m.Tables[table], key)
	return row, nil
}

// Close marks the store closed.
func (m *MockStore) Close(context.Context) error {
	m.Closed = true
	return nil
}

func conflictKey(row map[string]any, columns []string) string {
	key := ""
	for i, col := range columns {
		if i > 0 {
			key += "/"
		}
		key += fmt.Sprint(row[col])
	}
	return key
}

// plainValue renders a coerced parameter the way the real store's column
// reader would: UUIDs as strings, typed nulls as nil.
func plainValue(v any) any {
	switch t := v.(type) {
	case uuid.UUID:
		return t.String()
	case []uuid.UUID:
		if t == nil {
			return nil
		}
		strs := make([]string, len(t))
		for i, id := range t {
			strs[i] = id.String()
		}
		return strs
	case pgtype.UUID:
		if !t.Valid {
			return nil
		}
		return uuid.UUID(t.Bytes).String()
	case pgtype.Text:
		if !t.Valid {
			return nil
		}
		return t.String
	default:
		return v
	}
}

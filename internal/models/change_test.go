package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteChange_Decode(t *testing.T) {
	raw := `{
		"id": "ch-1",
		"table": "works",
		"op": "update",
		"payload": {"id": "w-1", "title": "T"},
		"created_at": 1756000000000,
		"status": "pending",
		"retry_count": 2
	}`

	var change WriteChange
	require.NoError(t, json.Unmarshal([]byte(raw), &change))

	assert.Equal(t, "ch-1", change.ID)
	assert.Equal(t, "works", change.Table)
	assert.Equal(t, WriteUpdate, change.Op)
	assert.JSONEq(t, `{"id": "w-1", "title": "T"}`, string(change.Payload))
	assert.Equal(t, int64(1756000000000), change.CreatedAt)
	assert.Equal(t, "pending", change.Status)
	assert.Equal(t, 2, change.RetryCount)
}

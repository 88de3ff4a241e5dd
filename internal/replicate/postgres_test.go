package replicate

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestSortedColumns(t *testing.T) {
	row := map[string]any{"title": 1, "id": 2, "updated_at": 3}
	assert.Equal(t, []string{"id", "title", "updated_at"}, sortedColumns(row))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"works"`, quoteIdent("works"))
	// Embedded quotes are escaped, not truncated.
	assert.Equal(t, `"odd""name"`, quoteIdent(`odd"name`))
}

func TestQuotedList(t *testing.T) {
	assert.Equal(t, `"device_id", "sha256"`, quotedList([]string{"device_id", "sha256"}))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1", placeholders(1))
	assert.Equal(t, "$1, $2, $3", placeholders(3))
	assert.Equal(t, "", placeholders(0))
}

func TestReadColumn(t *testing.T) {
	id := uuid.New()

	assert.Equal(t, id.String(), readColumn(&pgtype.UUID{Bytes: id, Valid: true}))
	assert.Nil(t, readColumn(&pgtype.UUID{}))

	assert.Equal(t, "hello", readColumn(&pgtype.Text{String: "hello", Valid: true}))
	assert.Nil(t, readColumn(&pgtype.Text{}))

	assert.Equal(t, int64(7), readColumn(&pgtype.Int4{Int32: 7, Valid: true}))
	assert.Equal(t, int64(9), readColumn(&pgtype.Int8{Int64: 9, Valid: true}))
	assert.Nil(t, readColumn(&pgtype.Int8{}))

	assert.Equal(t, true, readColumn(&pgtype.Bool{Bool: true, Valid: true}))
	assert.Equal(t, 2.5, readColumn(&pgtype.Float8{Float64: 2.5, Valid: true}))
}

func TestReadColumn_Documents(t *testing.T) {
	raw := []byte(`{"rects":[{"x":1}]}`)
	got := readColumn(&raw)

	var want any
	assert.NoError(t, json.Unmarshal(raw, &want))
	assert.Equal(t, want, got)

	var null []byte
	assert.Nil(t, readColumn(&null))
}

func TestReadColumn_Lists(t *testing.T) {
	tags := []string{"go", "sync"}
	assert.Equal(t, tags, readColumn(&tags))

	a, b := uuid.New(), uuid.New()
	ids := []uuid.UUID{a, b}
	assert.Equal(t, []string{a.String(), b.String()}, readColumn(&ids))

	var nullIDs []uuid.UUID
	assert.Nil(t, readColumn(&nullIDs))
}

package replicate

import (
	"context"

	"github.com/google/uuid"
)

// ConflictPolicy describes how an insert resolves a uniqueness conflict on
// a table's natural key.
type ConflictPolicy struct {
	// Columns is the conflict target.
	Columns []string
	// Overwrite selects last-writer-wins at insert time: on conflict every
	// column is overwritten with the submitted values. When false, a
	// conflict is silently skipped (no row returned, not an error) --
	// the same content may legitimately be re-announced by many callers.
	Overwrite bool
}

// knownTables is the remote schema consumed by the engine, mapped to each
// table's insert conflict policy. Tables keyed by content hash (or an
// owner/hash pair) use idempotent inserts; all others upsert on id.
var knownTables = map[string]ConflictPolicy{
	"works":            {Columns: []string{"id"}, Overwrite: true},
	"assets":           {Columns: []string{"id"}, Overwrite: true},
	"activities":       {Columns: []string{"id"}, Overwrite: true},
	"collections":      {Columns: []string{"id"}, Overwrite: true},
	"edges":            {Columns: []string{"id"}, Overwrite: true},
	"presets":          {Columns: []string{"id"}, Overwrite: true},
	"authors":          {Columns: []string{"id"}, Overwrite: true},
	"annotations":      {Columns: []string{"id"}, Overwrite: true},
	"cards":            {Columns: []string{"id"}, Overwrite: true},
	"review_logs":      {Columns: []string{"id"}, Overwrite: true},
	"boards":           {Columns: []string{"id"}, Overwrite: true},
	"strokes":          {Columns: []string{"id"}, Overwrite: true},
	"replication_jobs": {Columns: []string{"id"}, Overwrite: true},
	"blobs_meta":       {Columns: []string{"sha256"}},
	"device_blobs":     {Columns: []string{"device_id", "sha256"}},
}

// RemoteStore abstracts the remote relational store for one batch. The
// engine drives conflict resolution; implementations only execute the
// primitive row operations. Rows returned by any call are already
// translated to map form with plain JSON-compatible values.
type RemoteStore interface {
	// Insert adds a row under the given conflict policy. A skipped
	// idempotent insert returns (nil, nil).
	Insert(ctx context.Context, table string, row map[string]any, policy ConflictPolicy) (map[string]any, error)

	// UpdatedAt returns the LWW timestamp of the row with the given id,
	// and whether such a row exists.
	UpdatedAt(ctx context.Context, table string, id any) (int64, bool, error)

	// Fetch returns the row with the given id, or nil when absent.
	Fetch(ctx context.Context, table string, id any) (map[string]any, error)

	// Update overwrites the given columns of the row with the given id
	// and returns the resulting row.
	Update(ctx context.Context, table string, id any, row map[string]any) (map[string]any, error)

	// Delete removes the row with the given id. Deleting an absent row is
	// not an error; it returns (nil, nil).
	Delete(ctx context.Context, table string, id uuid.UUID) (map[string]any, error)

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Opener establishes a fresh remote connection for one batch call.
// Connections are not shared across concurrent batches.
type Opener func(ctx context.Context) (RemoteStore, error)

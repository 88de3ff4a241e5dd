// Package replicate applies batches of pending local mutations against the
// remote relational store. Each change's payload is reshaped to the remote
// schema, its field names normalized, its values coerced to store-native
// types, and the mutation applied with per-table conflict resolution:
// idempotent inserts for hash-keyed tables, last-writer-wins everywhere else.
package replicate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/deeprecall/recall/internal/models"
)

// Engine replicates WriteChange batches to the remote store.
type Engine struct {
	open   Opener
	logger *slog.Logger
}

// NewEngine creates an engine that opens a fresh remote connection per
// batch via open.
func NewEngine(open Opener, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{open: open, logger: logger}
}

// ApplyBatch applies changes strictly in submission order on a single
// connection and returns one result per change, in the same order. A
// failing change never aborts the rest of the batch; later changes may
// depend on earlier ones having completed.
func (e *Engine) ApplyBatch(ctx context.Context, changes []models.WriteChange) []models.WriteResult {
	results := make([]models.WriteResult, 0, len(changes))

	store, err := e.open(ctx)
	if err != nil {
		e.logger.Error("remote connect failed", "error", err)
		for _, change := range changes {
			results = append(results, failure(change.ID, fmt.Errorf("connect to remote store: %w", err)))
		}
		return results
	}
	defer store.Close(ctx)

	for _, change := range changes {
		data, err := e.applyChange(ctx, store, change)
		if err != nil {
			e.logger.Warn("change failed", "id", change.ID, "table", change.Table, "op", change.Op, "error", err)
			results = append(results, failure(change.ID, err))
			continue
		}
		e.logger.Debug("change applied", "id", change.ID, "table", change.Table, "op", change.Op)
		results = append(results, models.WriteResult{ID: change.ID, Success: true, Data: data})
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	e.logger.Info("batch applied", "changes", len(changes), "succeeded", succeeded, "failed", len(changes)-succeeded)

	return results
}

func (e *Engine) applyChange(ctx context.Context, store RemoteStore, change models.WriteChange) (map[string]any, error) {
	policy, ok := knownTables[change.Table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", change.Table)
	}

	switch change.Op {
	case models.WriteInsert:
		row, err := prepareRow(change.Table, change.Payload)
		if err != nil {
			return nil, err
		}
		return store.Insert(ctx, change.Table, row, policy)

	case models.WriteUpdate:
		row, err := prepareRow(change.Table, change.Payload)
		if err != nil {
			return nil, err
		}
		return e.applyUpdate(ctx, store, change.Table, policy, row)

	case models.WriteDelete:
		return e.applyDelete(ctx, store, change.Table, change.Payload)

	default:
		return nil, fmt.Errorf("unknown operation %q", change.Op)
	}
}

// applyUpdate performs a last-writer-wins update. An update against an
// absent row is re-routed through the insert path; an update strictly
// older than the remote row is discarded, returning the current remote
// row so the caller observes the superseding state.
func (e *Engine) applyUpdate(ctx context.Context, store RemoteStore, table string, policy ConflictPolicy, row map[string]any) (map[string]any, error) {
	id, ok := row["id"]
	if !ok {
		return nil, fmt.Errorf("missing id in update payload")
	}

	remoteTs, exists, err := store.UpdatedAt(ctx, table, id)
	if err != nil {
		return nil, fmt.Errorf("check existing row: %w", err)
	}
	if !exists {
		return store.Insert(ctx, table, row, policy)
	}

	clientTs, _ := asInt64(row["updated_at"])
	if clientTs < remoteTs {
		e.logger.Debug("update superseded by remote", "table", table, "client_ts", clientTs, "remote_ts", remoteTs)
		return store.Fetch(ctx, table, id)
	}

	fields := make(map[string]any, len(row)-1)
	for col, val := range row {
		if col != "id" {
			fields[col] = val
		}
	}
	return store.Update(ctx, table, id, fields)
}

func (e *Engine) applyDelete(ctx context.Context, store RemoteStore, table string, payload json.RawMessage) (map[string]any, error) {
	obj, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	idStr, ok := obj["id"].(string)
	if !ok {
		return nil, fmt.Errorf("missing id in delete payload")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", idStr, err)
	}
	return store.Delete(ctx, table, id)
}

// prepareRow runs the per-change pipeline up to the apply step: table
// transform, key normalization, and type coercion.
func prepareRow(table string, payload json.RawMessage) (map[string]any, error) {
	obj, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	if t, ok := transforms[table]; ok {
		obj = t(obj)
	}
	return coerceRow(normalizeKeys(obj)), nil
}

func decodePayload(payload json.RawMessage) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("payload must be an object")
	}
	return obj, nil
}

func failure(id string, err error) models.WriteResult {
	return models.WriteResult{ID: id, Success: false, Error: err.Error()}
}

// asInt64 extracts an integer timestamp from a coerced value.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// Package catalog provides SQLite-based persistence for the blob catalog.
// It tracks known blobs, their on-disk paths, and health state.
package catalog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/deeprecall/recall/internal/models"
)

// Catalog represents the SQLite catalog store
type Catalog struct {
	db *sql.DB
}

// New creates a new catalog connection
func New(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	c := &Catalog{db: db}
	return c, nil
}

// Close closes the database connection
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Initialize creates the catalog schema
func (c *Catalog) Initialize() error {
	schema := `
	-- Known blobs keyed by content hash
	CREATE TABLE IF NOT EXISTS blobs (
		hash TEXT PRIMARY KEY,
		size INTEGER NOT NULL,
		mime TEXT NOT NULL,
		mtime_ms INTEGER NOT NULL,
		created_ms INTEGER NOT NULL,
		filename TEXT,
		health TEXT DEFAULT 'healthy'
	);

	-- On-disk locations holding a blob's bytes (many paths per hash)
	CREATE TABLE IF NOT EXISTS paths (
		hash TEXT NOT NULL,
		path TEXT NOT NULL PRIMARY KEY,
		FOREIGN KEY (hash) REFERENCES blobs(hash) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_paths_hash ON paths(hash);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// DB returns the underlying database connection for advanced queries
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// UpsertBlob inserts or refreshes a blob row. On conflict the original
// created_ms is kept, and the filename is only overwritten when the new
// value is non-empty (a scan must not clobber a user-supplied filename).
func (c *Catalog) UpsertBlob(hash string, size int64, mime string, mtimeMs int64, filename string, health models.Health) error {
	createdMs := time.Now().UnixMilli()

	_, err := c.db.Exec(`
		INSERT INTO blobs (hash, size, mime, mtime_ms, created_ms, filename, health)
		VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?)
		ON CONFLICT(hash) DO UPDATE SET
			size = excluded.size,
			mime = excluded.mime,
			mtime_ms = excluded.mtime_ms,
			filename = COALESCE(excluded.filename, blobs.filename),
			health = excluded.health
	`, hash, size, mime, mtimeMs, createdMs, filename, string(health))
	return err
}

// UpsertPath records an on-disk path for a hash. Repeated calls with the
// same path are idempotent.
func (c *Catalog) UpsertPath(hash, path string) error {
	_, err := c.db.Exec(`
		INSERT INTO paths (hash, path) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET hash = excluded.hash
	`, hash, path)
	return err
}

// Get returns the blob record for a hash, or nil if unknown.
func (c *Catalog) Get(hash string) (*models.BlobRecord, error) {
	row := c.db.QueryRow(`
		SELECT b.hash, b.size, b.mime, b.mtime_ms, b.created_ms, b.filename, b.health, p.path
		FROM blobs b
		LEFT JOIN paths p ON b.hash = p.hash
		WHERE b.hash = ?
		LIMIT 1
	`, hash)

	rec, err := scanBlobRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns all blob records. Blobs without any recorded path still
// appear (LEFT JOIN), which health consumers rely on to detect "missing".
func (c *Catalog) List() ([]models.BlobRecord, error) {
	rows, err := c.db.Query(`
		SELECT b.hash, b.size, b.mime, b.mtime_ms, b.created_ms, b.filename, b.health, p.path
		FROM blobs b
		LEFT JOIN paths p ON b.hash = p.hash
		ORDER BY b.created_ms
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.BlobRecord
	for rows.Next() {
		rec, err := scanBlobRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Hashes returns all known blob hashes with their recorded paths. The scan
// uses this for the catalog-vs-disk set difference.
func (c *Catalog) Hashes() (map[string][]string, error) {
	rows, err := c.db.Query(`
		SELECT b.hash, p.path
		FROM blobs b
		LEFT JOIN paths p ON b.hash = p.hash
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var hash string
		var path sql.NullString
		if err := rows.Scan(&hash, &path); err != nil {
			return nil, err
		}
		if _, ok := result[hash]; !ok {
			result[hash] = nil
		}
		if path.Valid {
			result[hash] = append(result[hash], path.String)
		}
	}
	return result, rows.Err()
}

// Delete removes the catalog rows for a hash. The physical file is never
// touched here; content is addressed by hash and may be shared.
func (c *Catalog) Delete(hash string) error {
	if _, err := c.db.Exec("DELETE FROM paths WHERE hash = ?", hash); err != nil {
		return err
	}
	_, err := c.db.Exec("DELETE FROM blobs WHERE hash = ?", hash)
	return err
}

// Rename updates the user-facing filename for a hash.
func (c *Catalog) Rename(hash, filename string) error {
	_, err := c.db.Exec("UPDATE blobs SET filename = ? WHERE hash = ?", filename, hash)
	return err
}

// SetHealth updates the health state for a hash.
func (c *Catalog) SetHealth(hash string, health models.Health) error {
	_, err := c.db.Exec("UPDATE blobs SET health = ? WHERE hash = ?", string(health), hash)
	return err
}

// Stats returns aggregate health statistics over the catalog.
func (c *Catalog) Stats() (*models.CatalogStats, error) {
	var stats models.CatalogStats
	err := c.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(health = 'healthy'), 0),
			COALESCE(SUM(health = 'missing'), 0),
			COALESCE(SUM(health = 'modified'), 0),
			COALESCE(SUM(health = 'relocated'), 0),
			COALESCE(SUM(size), 0)
		FROM blobs
	`).Scan(&stats.TotalBlobs, &stats.Healthy, &stats.Missing, &stats.Modified,
		&stats.Relocated, &stats.TotalSize)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlobRow(row rowScanner) (*models.BlobRecord, error) {
	var rec models.BlobRecord
	var filename, health, path sql.NullString

	err := row.Scan(&rec.SHA256, &rec.Size, &rec.Mime, &rec.MtimeMs,
		&rec.CreatedMs, &filename, &health, &path)
	if err != nil {
		return nil, err
	}

	rec.Filename = filename.String
	rec.Path = path.String
	if health.Valid {
		rec.Health = models.Health(health.String)
	}
	return &rec, nil
}

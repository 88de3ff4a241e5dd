// Package blob manages the on-disk content-addressed blob layout and its
// reconciliation with the catalog. Blobs are stored under a two-level
// directory structure using the first two hex characters of the SHA-256
// hash as a prefix directory, which bounds per-directory fan-out.
package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/deeprecall/recall/internal/catalog"
	"github.com/deeprecall/recall/internal/models"
)

// validHash matches a lowercase hex-encoded SHA256 hash (64 characters).
var validHash = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Store manages content-addressed blobs rooted at a directory, with
// metadata persisted in the catalog.
type Store struct {
	root    string
	catalog *catalog.Catalog
}

// NewStore creates a blob store rooted at the given directory.
func NewStore(root string, cat *catalog.Catalog) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{root: root, catalog: cat}, nil
}

// Root returns the blob storage root directory.
func (s *Store) Root() string {
	return s.root
}

// Store writes data to the content-addressed layout and records it in the
// catalog. Storing identical bytes twice converges to the same hash, path,
// and catalog row; the file write is skipped when the content is already
// on disk.
func (s *Store) Store(filename string, data []byte, mimeType string) (*models.BlobRecord, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	path := s.blobPath(hash, filepath.Ext(filename))
	if err := s.writeIfAbsent(path, data); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat blob %s: %w", hash, err)
	}
	mtimeMs := info.ModTime().UnixMilli()

	if mimeType == "" {
		mimeType = mimeFromName(filename)
	}

	if err := s.catalog.UpsertBlob(hash, int64(len(data)), mimeType, mtimeMs, filename, models.HealthHealthy); err != nil {
		return nil, fmt.Errorf("record blob %s: %w", hash, err)
	}
	if err := s.catalog.UpsertPath(hash, path); err != nil {
		return nil, fmt.Errorf("record path for %s: %w", hash, err)
	}

	return &models.BlobRecord{
		SHA256:    hash,
		Size:      int64(len(data)),
		Mime:      mimeType,
		MtimeMs:   mtimeMs,
		CreatedMs: time.Now().UnixMilli(),
		Filename:  filename,
		Path:      path,
		Health:    models.HealthHealthy,
	}, nil
}

// Stat returns the catalog record for a hash. Absence is (nil, nil), not
// an error.
func (s *Store) Stat(hash string) (*models.BlobRecord, error) {
	if !validHash.MatchString(strings.ToLower(hash)) {
		return nil, nil
	}
	return s.catalog.Get(strings.ToLower(hash))
}

// List returns all catalog records.
func (s *Store) List() ([]models.BlobRecord, error) {
	return s.catalog.List()
}

// Delete removes the catalog rows for a hash. The physical file is
// intentionally retained: content is addressed by hash and other catalog
// entries or external references may share it.
func (s *Store) Delete(hash string) error {
	return s.catalog.Delete(strings.ToLower(hash))
}

// Rename updates the user-facing filename for a hash in the catalog.
func (s *Store) Rename(hash, filename string) error {
	return s.catalog.Rename(strings.ToLower(hash), filename)
}

// Stats returns catalog health statistics.
func (s *Store) Stats() (*models.CatalogStats, error) {
	return s.catalog.Stats()
}

// writeIfAbsent writes data to path via temp file + rename, skipping the
// write when the target already exists. Content-addressed naming makes the
// existing bytes identical by construction.
func (s *Store) writeIfAbsent(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".blob-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write blob data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename blob: %w", err)
	}
	return nil
}

// blobPath returns the filesystem path for a hash, retaining the original
// extension when present so downstream MIME sniffing by name keeps working.
func (s *Store) blobPath(hash, ext string) string {
	return filepath.Join(s.root, hash[:2], hash+ext)
}

// mimeFromName derives a MIME type from a filename's extension, falling
// back to application/octet-stream.
func mimeFromName(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		// Strip parameters like "; charset=utf-8"
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
		return t
	}
	return "application/octet-stream"
}

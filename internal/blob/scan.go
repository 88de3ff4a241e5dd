package blob

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/deeprecall/recall/internal/models"
)

// Scan walks the storage root and reconciles the catalog against the
// actual disk contents. Files that fail mid-processing are collected as
// per-file errors; the scan itself always completes. Catalog entries whose
// backing files are all gone are marked missing and counted as deleted —
// rows are never removed by a scan.
func (s *Store) Scan() (*models.ScanResult, error) {
	known, err := s.catalog.Hashes()
	if err != nil {
		return nil, fmt.Errorf("load catalog hashes: %w", err)
	}

	result := &models.ScanResult{}
	seen := make(map[string]bool)

	// WalkDir does not follow symbolic links.
	walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		name := d.Name()
		hash := strings.TrimSuffix(name, filepath.Ext(name))
		if !validHash.MatchString(hash) {
			return nil
		}

		isNew, err := s.reconcileFile(path, hash, known[hash])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			return nil
		}
		seen[hash] = true
		if isNew {
			result.Added++
		} else {
			result.Updated++
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk blob root: %w", walkErr)
	}

	// Catalog-vs-disk set difference: anything not seen on disk has lost
	// its backing file.
	for hash := range known {
		if seen[hash] {
			continue
		}
		if err := s.catalog.SetHealth(hash, models.HealthMissing); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", hash, err))
			continue
		}
		result.Deleted++
	}

	return result, nil
}

// reconcileFile refreshes the catalog from one on-disk file. Returns true
// when the hash was previously unknown. knownPaths is nil for unknown
// hashes and holds the recorded paths otherwise.
func (s *Store) reconcileFile(path, hash string, knownPaths []string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	mtimeMs := info.ModTime().UnixMilli()

	existing, err := s.catalog.Get(hash)
	if err != nil {
		return false, err
	}

	if existing == nil {
		// First discovery: no original filename, MIME from the file's own
		// name (extension survives the content-addressed rename).
		mimeType := mimeFromName(path)
		if err := s.catalog.UpsertBlob(hash, info.Size(), mimeType, mtimeMs, "", models.HealthHealthy); err != nil {
			return false, err
		}
		if err := s.catalog.UpsertPath(hash, path); err != nil {
			return false, err
		}
		return true, nil
	}

	// Known blob: preserve the existing filename, re-derive MIME from it
	// when present, otherwise from the file's own name.
	mimeType := existing.Mime
	if existing.Filename != "" {
		mimeType = mimeFromName(existing.Filename)
	} else if m := mimeFromName(path); m != "application/octet-stream" {
		mimeType = m
	}

	health := models.HealthHealthy
	if existing.Size != info.Size() {
		health = models.HealthModified
	} else if len(knownPaths) > 0 && !containsPath(knownPaths, path) {
		health = models.HealthRelocated
	}

	if err := s.catalog.UpsertBlob(hash, info.Size(), mimeType, mtimeMs, "", health); err != nil {
		return false, err
	}
	if err := s.catalog.UpsertPath(hash, path); err != nil {
		return false, err
	}
	return false, nil
}

func containsPath(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}

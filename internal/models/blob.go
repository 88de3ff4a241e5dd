package models

// Health classifies a blob's catalog-vs-disk consistency.
type Health string

const (
	HealthHealthy   Health = "healthy"
	HealthMissing   Health = "missing"
	HealthModified  Health = "modified"
	HealthRelocated Health = "relocated"
)

// BlobRecord is the catalog view of a stored blob. The hash is a lowercase
// hex-encoded SHA-256 digest of the content and uniquely identifies it.
type BlobRecord struct {
	SHA256    string `json:"sha256"`
	Size      int64  `json:"size"`
	Mime      string `json:"mime"`
	MtimeMs   int64  `json:"mtimeMs"`
	CreatedMs int64  `json:"createdMs"`
	Filename  string `json:"filename,omitempty"`
	Path      string `json:"path,omitempty"`
	Health    Health `json:"health"`
}

// ScanResult summarizes one reconciliation pass over the blob root.
// Errors holds per-file messages; a non-empty list does not mean the scan
// failed as a whole.
type ScanResult struct {
	Added   int      `json:"added"`
	Updated int      `json:"updated"`
	Deleted int      `json:"deleted"`
	Errors  []string `json:"errors"`
}

// CatalogStats aggregates health counts across the catalog.
type CatalogStats struct {
	TotalBlobs int   `json:"totalBlobs"`
	Healthy    int   `json:"healthy"`
	Missing    int   `json:"missing"`
	Modified   int   `json:"modified"`
	Relocated  int   `json:"relocated"`
	TotalSize  int64 `json:"totalSize"`
}

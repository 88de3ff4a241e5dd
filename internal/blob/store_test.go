package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeprecall/recall/internal/catalog"
	"github.com/deeprecall/recall/internal/models"
)

// newTestStore creates a blob store with its own catalog in a temp
// directory.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()

	cat, err := catalog.New(filepath.Join(dir, "catalog.db"))
	require.NoError(t, err)
	require.NoError(t, cat.Initialize())
	t.Cleanup(func() { cat.Close() })

	store, err := NewStore(filepath.Join(dir, "blobs"), cat)
	require.NoError(t, err)
	return store
}

func hashOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestStore_Store(t *testing.T) {
	s := newTestStore(t)
	data := []byte("hello world")

	rec, err := s.Store("greeting.txt", data, "")
	require.NoError(t, err)

	assert.Equal(t, hashOf(data), rec.SHA256)
	assert.Equal(t, int64(len(data)), rec.Size)
	assert.Equal(t, "text/plain", rec.Mime)
	assert.Equal(t, "greeting.txt", rec.Filename)
	assert.Equal(t, models.HealthHealthy, rec.Health)

	// Sharded layout: <root>/<hash[:2]>/<hash><ext>
	wantPath := filepath.Join(s.Root(), rec.SHA256[:2], rec.SHA256+".txt")
	assert.Equal(t, wantPath, rec.Path)

	got, err := os.ReadFile(rec.Path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStore_StoreIdempotent(t *testing.T) {
	s := newTestStore(t)
	data := []byte("same bytes")

	first, err := s.Store("a.txt", data, "")
	require.NoError(t, err)
	second, err := s.Store("a.txt", data, "")
	require.NoError(t, err)

	assert.Equal(t, first.SHA256, second.SHA256)
	assert.Equal(t, first.Path, second.Path)

	records, err := s.List()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStore_StoreExplicitMime(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Store("data.bin", []byte{0x01}, "application/x-custom")
	require.NoError(t, err)
	assert.Equal(t, "application/x-custom", rec.Mime)
}

func TestStore_StoreUnknownExtension(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Store("mystery.zzz9", []byte("?"), "")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", rec.Mime)
}

func TestStore_StatRoundTrip(t *testing.T) {
	s := newTestStore(t)
	data := []byte("stat me")

	stored, err := s.Store("s.txt", data, "")
	require.NoError(t, err)

	rec, err := s.Stat(stored.SHA256)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, stored.SHA256, rec.SHA256)
	assert.Equal(t, stored.Size, rec.Size)
	assert.Equal(t, stored.Mime, rec.Mime)
	assert.Equal(t, stored.Filename, rec.Filename)
	assert.Equal(t, stored.Path, rec.Path)
}

func TestStore_StatCaseInsensitive(t *testing.T) {
	s := newTestStore(t)

	stored, err := s.Store("c.txt", []byte("case"), "")
	require.NoError(t, err)

	rec, err := s.Stat(strings.ToUpper(stored.SHA256))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, stored.SHA256, rec.SHA256)
}

func TestStore_StatInvalidHash(t *testing.T) {
	s := newTestStore(t)

	for _, h := range []string{"", "abc", "zz" + hashOf([]byte("x"))[2:]} {
		rec, err := s.Stat(h)
		require.NoError(t, err)
		assert.Nil(t, rec, "hash %q", h)
	}
}

func TestStore_DeleteKeepsFile(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Store("d.txt", []byte("delete me"), "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(rec.SHA256))

	got, err := s.Stat(rec.SHA256)
	require.NoError(t, err)
	assert.Nil(t, got)

	// The physical file survives catalog deletion.
	_, err = os.Stat(rec.Path)
	assert.NoError(t, err)
}

func TestStore_DeleteThenStore(t *testing.T) {
	s := newTestStore(t)
	data := []byte("back again")

	first, err := s.Store("b.txt", data, "")
	require.NoError(t, err)
	require.NoError(t, s.Delete(first.SHA256))

	second, err := s.Store("b.txt", data, "")
	require.NoError(t, err)

	assert.Equal(t, first.SHA256, second.SHA256)
	assert.Equal(t, first.Path, second.Path)

	rec, err := s.Stat(second.SHA256)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, models.HealthHealthy, rec.Health)
}

func TestStore_Rename(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Store("old.txt", []byte("rename"), "")
	require.NoError(t, err)

	require.NoError(t, s.Rename(rec.SHA256, "new.txt"))

	got, err := s.Stat(rec.SHA256)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new.txt", got.Filename)
}

func TestMimeFromName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"doc.pdf", "application/pdf"},
		{"page.html", "text/html"},
		{"noext", "application/octet-stream"},
		{"weird.unknownext", "application/octet-stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mimeFromName(tt.name), tt.name)
	}
}

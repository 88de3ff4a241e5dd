package secrets

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "secrets.json"))
}

func TestFileStore_PutGet(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("postgres", "hunter2"))

	got, err := s.Get("postgres")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}

func TestFileStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("absent")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_Overwrite(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("k", "v1"))
	require.NoError(t, s.Put("k", "v2"))

	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
}

func TestFileStore_Delete(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("k", "v"))
	require.NoError(t, s.Delete("k"))

	_, err := s.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_DeleteAbsent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Delete("never-stored"))
}

func TestFileStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.json")

	require.NoError(t, NewFileStore(path).Put("k", "v"))

	got, err := NewFileStore(path).Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	s := newTestStore(t)
	require.NoError(t, s.Put("k", "v"))

	info, err := os.Stat(s.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

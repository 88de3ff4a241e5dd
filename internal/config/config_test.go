package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir stands in for t.Chdir, which needs Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func TestInitializeAndLoad(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Initialize(Postgres{
		Host:     "db.example.com",
		User:     "recall",
		Database: "deeprecall",
	})
	require.NoError(t, err)

	// Defaults fill in.
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)

	loaded, err := LoadFrom(cfg.RecallPath())
	require.NoError(t, err)
	assert.Equal(t, cfg.Postgres, loaded.Postgres)

	// Blobs directory is created up front.
	info, err := os.Stat(loaded.BlobsPath())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInitializeTwiceFails(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Initialize(Postgres{Host: "localhost"})
	require.NoError(t, err)

	_, err = Initialize(Postgres{Host: "localhost"})
	assert.ErrorContains(t, err, "already exists")
}

func TestFindRecallRootWalksUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, RecallDir), 0755))
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))

	chdir(t, nested)

	found, err := FindRecallRoot()
	require.NoError(t, err)
	// Resolve symlinks: temp dirs may sit behind one on some platforms.
	wantReal, err := filepath.EvalSymlinks(filepath.Join(root, RecallDir))
	require.NoError(t, err)
	foundReal, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, wantReal, foundReal)
}

func TestFindRecallRootNotFound(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := FindRecallRoot()
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Initialize(Postgres{Host: "localhost", User: "u", Database: "d"})
	require.NoError(t, err)

	cfg.Postgres.Host = "remote.example.com"
	require.NoError(t, cfg.Save())

	loaded, err := LoadFrom(cfg.RecallPath())
	require.NoError(t, err)
	assert.Equal(t, "remote.example.com", loaded.Postgres.Host)
}

func TestDSN(t *testing.T) {
	cfg := &Config{Postgres: Postgres{
		Host:     "localhost",
		Port:     5433,
		User:     "recall",
		Database: "deeprecall",
		SSLMode:  "require",
	}}

	assert.Equal(t,
		"host=localhost port=5433 user=recall password=s3cret dbname=deeprecall sslmode=require",
		cfg.DSN("s3cret"))
}

func TestDSNDefaultsSSLMode(t *testing.T) {
	cfg := &Config{Postgres: Postgres{Host: "h", Port: 5432, User: "u", Database: "d"}}
	assert.Contains(t, cfg.DSN("p"), "sslmode=disable")
}

func TestPaths(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Initialize(Postgres{Host: "localhost"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.RecallPath(), CatalogFile), cfg.CatalogPath())
	assert.Equal(t, filepath.Join(cfg.RecallPath(), BlobsDir), cfg.BlobsPath())
	assert.Equal(t, filepath.Join(cfg.RecallPath(), SecretsFile), cfg.SecretsPath())
}

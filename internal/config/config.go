// Package config manages the recall configuration and the .recall directory
// structure. It handles loading, saving, and initializing the application
// data directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	RecallDir   = ".recall"
	ConfigFile  = "config"
	CatalogFile = "catalog.db"
	BlobsDir    = "blobs"
	SecretsFile = "secrets.json"
)

// Postgres holds the remote store connection settings. The password is not
// stored here; it comes from the secrets store under the key "postgres".
type Postgres struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"` // "disable" or "require"
}

// Config represents the recall configuration
type Config struct {
	Postgres Postgres `toml:"postgres"`
	path     string   // path to .recall directory
}

// FindRecallRoot finds the .recall directory by walking up from current directory
func FindRecallRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		recallPath := filepath.Join(dir, RecallDir)
		if info, err := os.Stat(recallPath); err == nil && info.IsDir() {
			return recallPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a recall directory (or any parent up to root)")
		}
		dir = parent
	}
}

// Load loads the configuration from the .recall directory
func Load() (*Config, error) {
	recallPath, err := FindRecallRoot()
	if err != nil {
		return nil, err
	}
	return LoadFrom(recallPath)
}

// LoadFrom loads the configuration from a specific .recall directory
func LoadFrom(recallPath string) (*Config, error) {
	configPath := filepath.Join(recallPath, ConfigFile)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.path = recallPath
	return &cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configPath := filepath.Join(c.path, ConfigFile)
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// RecallPath returns the path to the .recall directory
func (c *Config) RecallPath() string {
	return c.path
}

// CatalogPath returns the path to the SQLite catalog database
func (c *Config) CatalogPath() string {
	return filepath.Join(c.path, CatalogFile)
}

// BlobsPath returns the path to the blob storage root
func (c *Config) BlobsPath() string {
	return filepath.Join(c.path, BlobsDir)
}

// SecretsPath returns the path to the secrets file
func (c *Config) SecretsPath() string {
	return filepath.Join(c.path, SecretsFile)
}

// DSN builds a Postgres connection string from the config and a password.
func (c *Config) DSN(password string) string {
	pg := c.Postgres
	sslmode := pg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		pg.Host, pg.Port, pg.User, password, pg.Database, sslmode)
}

// Initialize creates a new .recall directory with initial configuration
func Initialize(pg Postgres) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	recallPath := filepath.Join(cwd, RecallDir)

	// Check if already initialized
	if _, err := os.Stat(recallPath); err == nil {
		return nil, fmt.Errorf("recall directory already exists")
	}

	// Create directories
	if err := os.MkdirAll(recallPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .recall directory: %w", err)
	}

	blobsPath := filepath.Join(recallPath, BlobsDir)
	if err := os.MkdirAll(blobsPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blobs directory: %w", err)
	}

	if pg.Port == 0 {
		pg.Port = 5432
	}
	if pg.SSLMode == "" {
		pg.SSLMode = "disable"
	}

	cfg := &Config{
		Postgres: pg,
		path:     recallPath,
	}

	if err := cfg.Save(); err != nil {
		// Cleanup on failure
		os.RemoveAll(recallPath)
		return nil, err
	}

	return cfg, nil
}

// Package secrets provides keyed secret storage for credentials like the
// Postgres password and OAuth tokens. The interface is the narrow
// collaborator surface the core consumes; the file-backed implementation
// stands in for an OS keychain.
package secrets

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// ErrNotFound is returned when a key has no stored secret.
var ErrNotFound = fmt.Errorf("secret not found")

// Store is keyed secret storage.
type Store interface {
	Put(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// FileStore persists secrets as a 0600 JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed secret store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Put stores a secret under a key.
func (s *FileStore) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	data[key] = value
	return s.save(data)
}

// Get returns the secret for a key, or ErrNotFound.
func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return "", err
	}
	value, ok := data[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return value, nil
}

// Delete removes the secret for a key. Deleting an absent key is not an
// error.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	delete(data, key)
	return s.save(data)
}

func (s *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read secrets: %w", err)
	}

	var data map[string]string
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse secrets: %w", err)
	}
	return data, nil
}

func (s *FileStore) save(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0600)
}

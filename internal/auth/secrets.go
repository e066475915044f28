package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SecretStore persists secrets by key
type SecretStore interface {
	// Get returns the secret stored at key, or false if there is nothing stored at that key
	Get(ctx context.Context, key string) (string, bool, error)
	// Store overwrites the secret at key
	Store(ctx context.Context, key string, value string) error
	// Delete removes the secret at key. Deleting an absent key is not an error
	Delete(ctx context.Context, key string) error
}

// FileSecretStore implements SecretStore with a JSON file only the current user can read
type FileSecretStore struct {
	path string
	mu   sync.Mutex
}

func NewFileSecretStore(path string) *FileSecretStore {
	return &FileSecretStore{path: path}
}

func (fss *FileSecretStore) load() (map[string]string, error) {
	b, err := os.ReadFile(fss.path)
	if errors.Is(err, os.ErrNotExist) {
		// The file doesn't exist so nothing is stored
		return map[string]string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}
	secrets := map[string]string{}
	if err := json.Unmarshal(b, &secrets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal secrets: %w", err)
	}
	return secrets, nil
}

func (fss *FileSecretStore) save(secrets map[string]string) error {
	b, err := json.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("failed to marshal secrets: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(fss.path), 0o700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}
	if err := os.WriteFile(fss.path, b, 0o600); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}
	return nil
}

func (fss *FileSecretStore) Get(_ context.Context, key string) (string, bool, error) {
	fss.mu.Lock()
	defer fss.mu.Unlock()

	secrets, err := fss.load()
	if err != nil {
		return "", false, err
	}
	value, ok := secrets[key]
	return value, ok, nil
}

func (fss *FileSecretStore) Store(_ context.Context, key string, value string) error {
	fss.mu.Lock()
	defer fss.mu.Unlock()

	secrets, err := fss.load()
	if err != nil {
		return err
	}
	secrets[key] = value
	return fss.save(secrets)
}

func (fss *FileSecretStore) Delete(_ context.Context, key string) error {
	fss.mu.Lock()
	defer fss.mu.Unlock()

	secrets, err := fss.load()
	if err != nil {
		return err
	}
	if _, ok := secrets[key]; !ok {
		return nil
	}
	delete(secrets, key)
	return fss.save(secrets)
}

// MemorySecretStore keeps secrets in memory
type MemorySecretStore struct {
	mu      sync.Mutex
	secrets map[string]string
}

func NewMemorySecretStore() *MemorySecretStore {
	return &MemorySecretStore{secrets: map[string]string{}}
}

func (mss *MemorySecretStore) Get(_ context.Context, key string) (string, bool, error) {
	mss.mu.Lock()
	defer mss.mu.Unlock()
	value, ok := mss.secrets[key]
	return value, ok, nil
}

func (mss *MemorySecretStore) Store(_ context.Context, key string, value string) error {
	mss.mu.Lock()
	defer mss.mu.Unlock()
	mss.secrets[key] = value
	return nil
}

func (mss *MemorySecretStore) Delete(_ context.Context, key string) error {
	mss.mu.Lock()
	defer mss.mu.Unlock()
	delete(mss.secrets, key)
	return nil
}

package filestore

// Package filestore provides a file-backed storage backend for the session
// mirror. A single JSON document holds the key/value pairs; writes go
// through a temp file and rename so a crash mid-write never leaves a
// half-written mirror behind.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/deskware/portal-client/internal/ports"
)

const fileMode = 0o600

// Backend implements ports.StorageBackend on top of a local JSON file.
type Backend struct {
	mu   sync.Mutex
	path string
}

// New creates a file-backed storage backend at path. The parent directory is
// created if needed.
func New(path string) (*Backend, error) {
	if path == "" {
		return nil, errors.New("filestore: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("filestore: create directory: %w", err)
	}
	return &Backend{path: path}, nil
}

func (b *Backend) Get(_ context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return v, nil
}

func (b *Backend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.read()
	if err != nil {
		return err
	}
	values[key] = value
	return b.write(values)
}

func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		// Last key gone: remove the file rather than leaving an empty mirror.
		if rmErr := os.Remove(b.path); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("filestore: remove: %w", rmErr)
		}
		return nil
	}
	return b.write(values)
}

// read loads the current document. A missing file is an empty document; a
// corrupt file is also treated as empty since the session layer treats
// malformed stored data as an absent session anyway.
func (b *Backend) read() (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("filestore: read: %w", err)
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return map[string]string{}, nil
	}
	return values, nil
}

func (b *Backend) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("filestore: marshal: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return fmt.Errorf("filestore: write: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("filestore: rename: %w", err)
	}
	return nil
}

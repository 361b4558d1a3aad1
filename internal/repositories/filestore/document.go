package filestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// document is a whole-file JSON document held in memory. It is loaded once; every
// mutation runs under the write lock and rewrites the complete file before the lock
// is released, so concurrent saves are serialized and none is lost.
type document[T any] struct {
	mu   sync.RWMutex
	path string
	data T
	// empty returns a fresh zero document.
	empty func() T
}

// openDocument loads path, creating the parent directory and an empty document when the
// file does not exist. A file that exists but does not decode is an error.
func openDocument[T any](path string, empty func() T) (*document[T], error) {
	d := &document[T]{path: path, empty: empty}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		d.data = empty()
		if err := d.persist(d.data); err != nil {
			return nil, err
		}
		return d, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	data := empty()
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("malformed document %s: %w", path, err)
		}
	}
	d.data = data
	return d, nil
}

// read runs fn with the document under the read lock.
func (d *document[T]) read(fn func(T)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.data)
}

// update runs fn under the write lock and persists the result. fn must not retain data
// and must leave it untouched when it returns an error. If the write fails, the
// in-memory document is reloaded from disk.
func (d *document[T]) update(fn func(T) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := fn(d.data); err != nil {
		return err
	}
	if err := d.persist(d.data); err != nil {
		d.rollback()
		return err
	}
	return nil
}

func (d *document[T]) rollback() {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		return
	}
	data := d.empty()
	if json.Unmarshal(raw, &data) == nil {
		d.data = data
	}
}

// persist writes data to a temp file in the same directory and renames it over path.
func (d *document[T]) persist(data T) error {
	encoded, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", d.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", d.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", d.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", d.path, err)
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", d.path, err)
	}
	return nil
}

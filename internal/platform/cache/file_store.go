/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-21
 * Change License: AGPL-3.0
 */

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/TraceApi/brasil-utils/internal/core/domain"
	"github.com/TraceApi/brasil-utils/internal/core/ports"
)

// ErrInvalidKey is returned when a namespace or key cannot be used as a file name.
var ErrInvalidKey = errors.New("invalid cache key")

// FileStore keeps one file per entry under <root>/<namespace>/<key>.json.
// The file holds the document bytes verbatim; its modification time is the
// entry's stored-at time. Nothing is ever evicted, stale files just stop
// being served.
type FileStore struct {
	root   string
	maxAge time.Duration
	now    func() time.Time
}

var _ ports.DocumentCache = (*FileStore)(nil)

// NewFileStore returns a store rooted at root, or at the system temp
// directory when root is empty. maxAge of zero disables the age limit.
func NewFileStore(root string, maxAge time.Duration) *FileStore {
	if root == "" {
		root = os.TempDir()
	}
	return &FileStore{root: root, maxAge: maxAge, now: time.Now}
}

// Put writes the document, replacing any previous entry for the key.
// The namespace directory is created when missing.
func (f *FileStore) Put(ctx context.Context, namespace, key string, document []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(namespace, key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Write aside and rename so readers never see a half-written file.
	tmp, err := os.CreateTemp(dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	// CreateTemp opens the file 0600; entries are meant to be shared.
	if err := tmp.Chmod(0o666); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set cache file mode: %w", err)
	}
	if _, err := tmp.Write(document); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to store cache file: %w", err)
	}
	return nil
}

// Get returns the stored document when it exists, is fresh and is valid JSON.
func (f *FileStore) Get(ctx context.Context, namespace, key string, validUntil time.Time) ([]byte, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	path, err := f.path(namespace, key)
	if err != nil {
		return nil, false
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, false
	}

	entry := domain.CacheEntry{Namespace: namespace, Key: key, StoredAt: info.ModTime()}
	if !entry.Fresh(f.now(), validUntil, f.maxAge) {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil || !json.Valid(data) {
		return nil, false
	}
	return data, true
}

func (f *FileStore) path(namespace, key string) (string, error) {
	for _, part := range []string{namespace, key} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, part)
		}
	}
	return filepath.Join(f.root, namespace, key+".json"), nil
}

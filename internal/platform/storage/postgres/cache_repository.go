/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/TraceApi/brasil-utils/internal/core/domain"
	"github.com/TraceApi/brasil-utils/internal/core/ports"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// CacheRepository stores cache entries in the cache_entries table.
// The document column is TEXT so the bytes come back exactly as written.
type CacheRepository struct {
	db     *pgxpool.Pool
	maxAge time.Duration
	now    func() time.Time
}

// Ensure we implement the interface
var _ ports.DocumentCache = (*CacheRepository)(nil)

func NewCacheRepository(db *pgxpool.Pool, maxAge time.Duration) *CacheRepository {
	return &CacheRepository{db: db, maxAge: maxAge, now: time.Now}
}

// EnsureSchema creates the table when missing.
func (r *CacheRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create cache schema: %w", err)
	}
	return nil
}

func (r *CacheRepository) Put(ctx context.Context, namespace, key string, document []byte) error {
	query := `
		INSERT INTO cache_entries (namespace, key, document, stored_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (namespace, key) DO UPDATE SET
			document = EXCLUDED.document,
			stored_at = EXCLUDED.stored_at;
	`

	_, err := r.db.Exec(ctx, query, namespace, key, string(document), r.now().UTC())
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}

// Get returns the entry when present and fresh. Row-not-found and database
// errors alike are reported as a miss.
func (r *CacheRepository) Get(ctx context.Context, namespace, key string, validUntil time.Time) ([]byte, bool) {
	query := `
		SELECT document, stored_at
		FROM cache_entries
		WHERE namespace = $1 AND key = $2
	`

	var (
		document string
		storedAt time.Time
	)
	if err := r.db.QueryRow(ctx, query, namespace, key).Scan(&document, &storedAt); err != nil {
		return nil, false
	}

	entry := domain.CacheEntry{Namespace: namespace, Key: key, Document: []byte(document), StoredAt: storedAt}
	if !entry.Fresh(r.now(), validUntil, r.maxAge) || !json.Valid(entry.Document) {
		return nil, false
	}
	return entry.Document, true
}

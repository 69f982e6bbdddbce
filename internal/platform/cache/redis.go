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
	"time"

	"github.com/TraceApi/brasil-utils/internal/core/domain"
	"github.com/TraceApi/brasil-utils/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

var errCacheMiss = errors.New("key not found")

// envelope keeps the stored-at time next to the document so the validity
// rules match the other backends. The document is kept as a string so its
// bytes come back exactly as they were written.
type envelope struct {
	StoredAt time.Time `json:"stored_at"`
	Document string    `json:"document"`
}

type RedisStore struct {
	client *redis.Client
	maxAge time.Duration
	now    func() time.Time
}

var _ ports.DocumentCache = (*RedisStore)(nil)

// NewRedisStore connects to addr. maxAge doubles as the Redis TTL; zero keeps entries forever.
func NewRedisStore(addr string, maxAge time.Duration) *RedisStore {
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: addr}), maxAge)
}

func NewRedisStoreFromClient(client *redis.Client, maxAge time.Duration) *RedisStore {
	return &RedisStore{client: client, maxAge: maxAge, now: time.Now}
}

// Put stores the document under namespace:key, overwriting any previous value.
func (r *RedisStore) Put(ctx context.Context, namespace, key string, document []byte) error {
	payload, err := json.Marshal(envelope{StoredAt: r.now().UTC(), Document: string(document)})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKey(namespace, key), payload, r.maxAge).Err()
}

// Get returns the document when present and fresh. Any Redis error is a miss.
func (r *RedisStore) Get(ctx context.Context, namespace, key string, validUntil time.Time) ([]byte, bool) {
	val, err := r.get(ctx, redisKey(namespace, key))
	if err != nil {
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal([]byte(val), &env); err != nil || !json.Valid([]byte(env.Document)) {
		return nil, false
	}

	entry := domain.CacheEntry{Namespace: namespace, Key: key, Document: []byte(env.Document), StoredAt: env.StoredAt}
	if !entry.Fresh(r.now(), validUntil, r.maxAge) {
		return nil, false
	}
	return entry.Document, true
}

// get retrieves a raw value by key. Returns errCacheMiss if not found.
func (r *RedisStore) get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", errCacheMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func redisKey(namespace, key string) string {
	return namespace + ":" + key
}

package ports

import (
	"context"
	"time"
)

// DocumentCache stores raw JSON documents per namespace and key.
//
// Get never reports an error: a missing, expired or unreadable entry is
// simply not found, and callers fall back to the source of truth.
type DocumentCache interface {
	Put(ctx context.Context, namespace, key string, document []byte) error
	Get(ctx context.Context, namespace, key string, validUntil time.Time) ([]byte, bool)
}

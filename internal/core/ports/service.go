package ports

import (
	"context"
	"time"

	"github.com/TraceApi/brasil-utils/internal/core/domain"
)

// ResolveOptions controls a single CEP resolution.
type ResolveOptions struct {
	// Strict turns "no result" into an error (ErrFormat or ErrLookup).
	Strict bool
	// UseCache reads from and writes to the document cache.
	UseCache bool
	// ValidUntil is the freshness horizon for cached entries. Zero means none.
	ValidUntil time.Time
}

// ResolveDefaults are the per-instance settings DefaultOptions is built from.
// Validity is relative: each call to DefaultOptions places the horizon that
// far after the current time. Zero means no horizon.
type ResolveDefaults struct {
	Strict   bool
	UseCache bool
	Validity time.Duration
}

type AddressService interface {
	// Resolve validates the CEP, consults the cache when enabled and falls
	// back to the remote service. A nil Address with a nil error means "no
	// result" in lenient mode.
	Resolve(ctx context.Context, cep string, opts ResolveOptions) (domain.Address, error)

	// DefaultOptions returns the configured options with a horizon measured
	// from now.
	DefaultOptions() ResolveOptions
}

package domain

import "time"

// CacheEntry is one stored document. Entries are never updated in place:
// a new Put replaces the whole thing.
type CacheEntry struct {
	Namespace string
	Key       string
	Document  []byte
	StoredAt  time.Time
}

// Fresh reports whether the entry may be served at now.
//
// validUntil is the caller's horizon: once now is past it nothing is served.
// A zero validUntil means no horizon. maxAge is the store-wide limit on the
// age of an entry; zero disables it.
func (e CacheEntry) Fresh(now, validUntil time.Time, maxAge time.Duration) bool {
	if !validUntil.IsZero() && now.After(validUntil) {
		return false
	}
	if maxAge > 0 && !e.StoredAt.IsZero() && now.Sub(e.StoredAt) > maxAge {
		return false
	}
	return true
}

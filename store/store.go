// Package store holds cached responses keyed by opaque strings.
package store

import (
	"context"
	"net/http"
	"time"

	cachekey "github.com/vasistbhargav/respcache/pkg/cache-key"
	"github.com/vasistbhargav/respcache/rfc7234"
)

// Store is the interface a cache storage backend must implement.
// Entries are immutable once stored; a new population replaces the entry
// under its key rather than mutating it.
//
// Implementations must be thread-safe!
type Store interface {
	// Get returns the entry stored under the given key, if it exists
	// and has not expired. (Expired entries should also be purged.)
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Put stores the entry under its key. Entries larger than the
	// backend's per-entry admission limit are silently dropped.
	Put(ctx context.Context, entry Entry) error
	// Remove deletes the entry for the given key.
	Remove(ctx context.Context, key string) error
}

// Entry is one stored response, or a vary marker pointing at the variant
// keys derived from its base key.
type Entry struct {
	Key        string
	StatusCode int
	Header     http.Header
	Body       []byte
	// StoredAt is the creation time of the entry; age is computed from
	// it at serve time.
	StoredAt time.Time
	// Lifetime is the declared freshness lifetime of the response.
	Lifetime time.Duration
	// Vary is set on marker entries stored under the base key when the
	// response nominated vary rules.
	Vary cachekey.VaryRules
}

// IsVaryMarker reports whether the entry only carries vary rules.
func (e Entry) IsVaryMarker() bool {
	return e.StatusCode == 0
}

// Fresh reports whether the entry may still be served at now.
func (e Entry) Fresh(now time.Time) bool {
	return rfc7234.Fresh(e.StoredAt, e.Lifetime, now)
}

// Size returns the serialized size estimate used for admission and
// eviction accounting.
func (e Entry) Size() int64 {
	size := int64(len(e.Key) + len(e.Body))
	for name, values := range e.Header {
		for _, value := range values {
			size += int64(len(name) + len(value) + 4)
		}
	}
	return size
}

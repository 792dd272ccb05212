package respcache

import (
	"github.com/rs/zerolog"

	cachekey "github.com/vasistbhargav/respcache/pkg/cache-key"
	responserules "github.com/vasistbhargav/respcache/pkg/response-rules"
	"github.com/vasistbhargav/respcache/store"
)

const (
	// DefaultMaxCachedBodySize is the largest response body stored when
	// Options.MaxCachedBodySize is zero.
	DefaultMaxCachedBodySize = 64 << 20
	// DefaultMaxCacheSize is the byte budget of the default in-process
	// store when Options.MaxCacheSize is zero.
	DefaultMaxCacheSize = 100 << 20
)

// Options configures a ResponseCache.
type Options struct {
	// Store holds the cached responses.
	// An in-process LRU store bounded by MaxCacheSize is used if nil.
	Store store.Store
	// MaxCachedBodySize is the largest response body, in bytes, that
	// will be stored. Larger responses are served live and not cached.
	MaxCachedBodySize int64
	// MaxCacheSize is the total byte budget across all entries.
	// Only used when Store is nil.
	MaxCacheSize int64
	// VaryByHeaders nominates request headers every cached response
	// varies by, in addition to what the response's own Vary declares.
	VaryByHeaders []string
	// VaryByQueryKeys nominates query parameters every cached response
	// varies by. "*" selects all parameters present on the request.
	VaryByQueryKeys []string
	// CaseInsensitivePaths folds the request path case when building
	// cache keys. Paths are case-sensitive by default; header and query
	// parameter names are always case-insensitive.
	CaseInsensitivePaths bool
	// Partition contributes an opaque prefix and suffix to every cache
	// key, e.g. for multi-tenant partitioning.
	Partition cachekey.PartitionHook
	// Rules decorate produced responses with Cache-Control defaults or
	// overrides before storability is evaluated.
	Rules responserules.Rules
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

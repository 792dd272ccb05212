// Package respcache is a server-side HTTP response cache, usable as a
// net/http middleware. It stores eligible responses per RFC 7234 semantics
// and serves later matching requests from the cache, honoring Vary-based
// content negotiation, conditional revalidation and per-request
// Cache-Control directives. Concurrent misses on one key are collapsed so
// the wrapped handler runs at most once per population.
package respcache

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vasistbhargav/respcache/metrics"
	cachekey "github.com/vasistbhargav/respcache/pkg/cache-key"
	responserules "github.com/vasistbhargav/respcache/pkg/response-rules"
	tee "github.com/vasistbhargav/respcache/pkg/response-writer-tee"
	"github.com/vasistbhargav/respcache/rfc7234"
	"github.com/vasistbhargav/respcache/rfc9211"
	"github.com/vasistbhargav/respcache/stampede"
	"github.com/vasistbhargav/respcache/store"
)

// ResponseCache caches responses of the handlers it wraps.
// Create instances with New.
type ResponseCache struct {
	store       store.Store
	keyer       cachekey.Keyer
	guard       *stampede.Guard
	rules       responserules.Rules
	log         zerolog.Logger
	maxBodySize int64
	defaultVary cachekey.VaryRules
	now         func() time.Time
}

// New initializes a ResponseCache from the given options.
func New(options Options) *ResponseCache {
	logger := log.Logger
	if options.Logger != nil {
		logger = *options.Logger
	}
	maxBodySize := options.MaxCachedBodySize
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxCachedBodySize
	}
	st := options.Store
	if st == nil {
		maxCacheSize := options.MaxCacheSize
		if maxCacheSize <= 0 {
			maxCacheSize = DefaultMaxCacheSize
		}
		st = store.NewMemory(store.MemoryConfig{
			MaxSize:      maxCacheSize,
			MaxEntrySize: maxBodySize,
		})
	}
	partition := options.Partition
	if partition == nil {
		partition = cachekey.NoPartition{}
	}
	return &ResponseCache{
		store: st,
		keyer: cachekey.Keyer{
			Partition:          partition,
			CaseSensitivePaths: !options.CaseInsensitivePaths,
		},
		guard:       stampede.NewGuard(),
		rules:       options.Rules,
		log:         logger,
		maxBodySize: maxBodySize,
		defaultVary: cachekey.VaryRules{
			Headers:   options.VaryByHeaders,
			QueryKeys: options.VaryByQueryKeys,
		}.Normalize(),
		now: time.Now,
	}
}

// Middleware wraps next with the cache.
func (c *ResponseCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.serve(w, r, next)
	})
}

func (c *ResponseCache) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	var cs rfc9211.CacheStatus

	if !rfc7234.MethodCacheable(r.Method) {
		cs.Forward(rfc9211.FwdReasonMethod)
		w.Header().Add("Cache-Status", cs.String())
		next.ServeHTTP(w, r)
		c.logRequest(r, cs)
		return
	}

	baseKey := c.keyer.BaseKey(r)
	reqCacheControl := rfc7234.ParseCacheControl(r.Header.Values("Cache-Control"))

	// A request that refuses stored responses still executes live and
	// may populate the cache for others. It does not wait on the guard:
	// there is nothing for it to reuse afterwards.
	if !rfc7234.RequestServable(reqCacheControl) {
		cs.Forward(rfc9211.FwdReasonRequest)
		c.execute(w, r, next, baseKey, cs, nil)
		return
	}

	for {
		entry, fwdReason, ok := c.lookup(r.Context(), r, baseKey)
		if ok {
			c.sendStored(w, r, entry, cs)
			return
		}
		if reqCacheControl.HasDirective("only-if-cached") {
			cs.Forward(fwdReason)
			w.Header().Add("Cache-Status", cs.String())
			http.Error(w, "cache miss with only-if-cached", http.StatusGatewayTimeout)
			c.logRequest(r, cs)
			return
		}
		owner, release, err := c.guard.Acquire(r.Context(), baseKey)
		if err != nil {
			// client gave up while waiting on a population
			c.log.Trace().Err(err).Str("key", baseKey).Msg("Abandoning guarded request")
			return
		}
		if !owner {
			// the owner finished, the entry should be there now
			metrics.CoalescedCounter.Inc()
			continue
		}
		cs.Forward(fwdReason)
		c.execute(w, r, next, baseKey, cs, release)
		return
	}
}

// lookup finds a stored response matching the request: the base key holds
// either the response itself or a vary marker redirecting to the variant
// key selected by this request's nominated field values. Store errors are
// treated as misses, never failures.
func (c *ResponseCache) lookup(ctx context.Context, r *http.Request, baseKey string) (store.Entry, rfc9211.FwdReason, bool) {
	entry, ok, err := c.store.Get(ctx, baseKey)
	if err != nil {
		c.log.Warn().Err(err).Str("key", baseKey).Msg("Could not read from cache")
		return store.Entry{}, rfc9211.FwdReasonUriMiss, false
	}
	if !ok {
		return store.Entry{}, rfc9211.FwdReasonUriMiss, false
	}
	if entry.IsVaryMarker() {
		variedKey := c.keyer.VariedKey(baseKey, r, entry.Vary)
		entry, ok, err = c.store.Get(ctx, variedKey)
		if err != nil {
			c.log.Warn().Err(err).Str("key", variedKey).Msg("Could not read from cache")
			return store.Entry{}, rfc9211.FwdReasonVaryMiss, false
		}
		if !ok {
			return store.Entry{}, rfc9211.FwdReasonVaryMiss, false
		}
	}
	return entry, "", true
}

// sendStored replays a stored response, either in full or as a 304 when
// the request's conditional headers validate against it.
func (c *ResponseCache) sendStored(w http.ResponseWriter, r *http.Request, entry store.Entry, cs rfc9211.CacheStatus) {
	now := c.now()
	cs.Hit()
	cs.TimeToLive = int((entry.Lifetime - rfc7234.Age(entry.StoredAt, now)) / time.Second)
	metrics.HitCounter.Inc()

	if rfc7234.NotModified(r.Header, entry.Header, entry.StoredAt) {
		for _, name := range rfc7234.ValidatorHeaders {
			for _, value := range entry.Header.Values(name) {
				w.Header().Add(name, value)
			}
		}
		w.Header().Set("Age", rfc7234.AgeSeconds(entry.StoredAt, now))
		w.Header().Add("Cache-Status", cs.String())
		w.WriteHeader(http.StatusNotModified)
		c.logRequest(r, cs)
		return
	}

	copyHeader(w.Header(), entry.Header)
	w.Header().Set("Age", rfc7234.AgeSeconds(entry.StoredAt, now))
	w.Header().Add("Cache-Status", cs.String())
	w.WriteHeader(entry.StatusCode)
	if r.Method != http.MethodHead {
		if _, err := w.Write(entry.Body); err != nil {
			c.log.Error().Err(err).Msg("Could not write response body to client")
		}
	}
	c.logRequest(r, cs)
}

// execute runs the live handler with the response teed into a buffer and
// stores the result if the response policy allows it. The client observes
// the response exactly as the handler produced it; failures to store never
// fail the exchange.
func (c *ResponseCache) execute(w http.ResponseWriter, r *http.Request, next http.Handler, baseKey string, cs rfc9211.CacheStatus, release func()) {
	if release != nil {
		defer release()
	}
	metrics.MissCounter.Inc()
	w.Header().Add("Cache-Status", cs.String())

	r, reqOverrides := withOverrides(r)
	saver := tee.NewResponseSaver(w, c.maxBodySize)
	next.ServeHTTP(saver, r)

	cs.Stored = c.maybeStore(r, baseKey, saver, reqOverrides)
	c.logRequest(r, cs)
}

func (c *ResponseCache) maybeStore(r *http.Request, baseKey string, saver *tee.ResponseSaver, reqOverrides *overrides) bool {
	if reqOverrides.unbuffered {
		saver.MarkBypassed()
	}
	if !saver.Recorded() {
		if saver.Bypassed() {
			c.log.Trace().Str("key", baseKey).Msg("Response bypassed buffering, not storing")
		}
		return false
	}
	header := saver.HeaderSnapshot()
	c.rules.Apply(r, saver.StatusCode(), header)
	lifetime, storable := rfc7234.ResponseStorable(saver.StatusCode(), header, saver.CreatedAt)
	if !storable {
		return false
	}

	now := c.now()
	storedHeader := header.Clone()
	// never replay cookies or this cache's own bookkeeping from storage
	storedHeader.Del("Set-Cookie")
	storedHeader.Del("Age")
	storedHeader.Del("Cache-Status")
	if storedHeader.Get("Date") == "" {
		storedHeader.Set("Date", rfc7234.ToHTTPDate(now))
	}

	varyRules := cachekey.VaryFromResponse(header).
		Merge(c.defaultVary).
		Merge(cachekey.VaryRules{
			Headers:   reqOverrides.varyByHeaders,
			QueryKeys: reqOverrides.varyByQueryKeys,
		})

	key := baseKey
	if !varyRules.IsZero() {
		marker := store.Entry{
			Key:      baseKey,
			StoredAt: now,
			Lifetime: lifetime,
			Vary:     varyRules,
		}
		if err := c.store.Put(context.Background(), marker); err != nil {
			c.log.Warn().Err(err).Str("key", baseKey).Msg("Could not write vary marker to cache")
			return false
		}
		key = c.keyer.VariedKey(baseKey, r, varyRules)
	}

	entry := store.Entry{
		Key:        key,
		StatusCode: saver.StatusCode(),
		Header:     storedHeader,
		Body:       saver.Body(),
		StoredAt:   now,
		Lifetime:   lifetime,
	}
	if err := c.store.Put(context.Background(), entry); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Could not write to cache")
		return false
	}
	c.log.Trace().Str("key", key).Dur("lifetime", lifetime).Msg("Cache write")
	metrics.StoreCounter.Inc()
	return true
}

func (c *ResponseCache) logRequest(r *http.Request, cs rfc9211.CacheStatus) {
	isHit := 0
	if cs.Status == rfc9211.StatusHit {
		isHit = 1
	}
	c.log.Debug().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Str("status", string(cs.Status)).
		Str("fwd", string(cs.FwdReason)).
		Bool("stored", cs.Stored).
		Int("ttl", cs.TimeToLive).
		Int("hit", isHit).
		Msg("Sending response to client")
}

func copyHeader(dst, src http.Header) {
	for name, values := range src {
		for _, value := range values {
			dst.Add(name, value)
		}
	}
}

package rfc7234

import (
	"net/http"
	"time"
)

// §  3.  Storing Responses in Caches
// §
// §     A cache MUST NOT store a response to any request, unless: [...]

// MethodCacheable reports whether a request with the given method may be
// answered from or populate the cache. Only safe, idempotent methods
// qualify; everything else is written through to the handler.
func MethodCacheable(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead:
		return true
	}
	return false
}

// RequestServable reports whether the request is allowed to be satisfied
// with a stored response at all. A request carrying no-store or no-cache
// must not receive a potentially-stale stored copy; since this cache never
// revalidates against the handler, both directives bypass serving. The
// request stays eligible to trigger population.
func RequestServable(reqCacheControl CacheControl) bool {
	return !reqCacheControl.HasDirective("no-store") &&
		!reqCacheControl.HasDirective("no-cache")
}

// ResponseStorable decides whether a produced response may be stored, and
// if so for how long. Policy is opt-in: the response must carry
// `Cache-Control: public` together with a positive freshness lifetime
// (max-age, s-maxage, or Expires). A response nominating `Vary: *` can
// never be matched against a later request and is not stored either.
func ResponseStorable(statusCode int, header http.Header, received time.Time) (time.Duration, bool) {
	if statusCode != http.StatusOK {
		return 0, false
	}
	cc := ParseCacheControl(header.Values("Cache-Control"))
	if !cc.HasDirective("public") ||
		cc.HasDirective("no-store") ||
		cc.HasDirective("private") {
		return 0, false
	}
	for _, field := range ListHeader(header, "Vary") {
		if field == "*" {
			return 0, false
		}
	}
	lifetime := Lifetime(header, received)
	if lifetime <= 0 {
		return 0, false
	}
	return lifetime, true
}

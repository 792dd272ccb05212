package rfc7234

import (
	"net/http"
	"strconv"
	"time"
)

// §  4.2.  Freshness
// §
// §     The calculation to determine if a response is fresh is:
// §
// §        response_is_fresh = (freshness_lifetime > current_age)

// Fresh reports whether a response stored at the given time with the given
// freshness lifetime may still be reused at now.
func Fresh(storedAt time.Time, lifetime time.Duration, now time.Time) bool {
	return lifetime > Age(storedAt, now)
}

// Age returns the current age of a response stored at the given time.
// This cache is always directly in front of the origin, so the age is
// simply the resident time. The result is never negative.
func Age(storedAt time.Time, now time.Time) time.Duration {
	if age := now.Sub(storedAt); age > 0 {
		return age
	}
	return 0
}

// AgeSeconds returns the Age header field value (delta-seconds) for a
// response stored at the given time.
func AgeSeconds(storedAt time.Time, now time.Time) string {
	return strconv.FormatInt(int64(Age(storedAt, now)/time.Second), 10)
}

// §  4.2.1.  Calculating Freshness Lifetime
// §
// §     A cache can calculate the freshness lifetime of a response by
// §     evaluating the following rules and using the first match:

// Lifetime returns the freshness lifetime declared by the response headers.
// The rules are evaluated in order: s-maxage (this is a shared cache),
// max-age, then Expires minus Date. The received time substitutes for a
// missing Date header. Responses without an explicit expiration have a
// zero lifetime; no heuristic freshness is assigned.
func Lifetime(header http.Header, received time.Time) time.Duration {
	cc := ParseCacheControl(header.Values("Cache-Control"))
	if val, ok := cc.SMaxAge(); ok {
		return val
	}
	if val, ok := cc.MaxAge(); ok {
		return val
	}
	if expiresValue := header.Get("Expires"); expiresValue != "" {
		expires, err := HTTPDate(expiresValue)
		if err != nil {
			// §  Caches are encouraged to consider responses that have
			// §  invalid freshness information to be stale.
			return 0
		}
		date := received
		if dateValue := header.Get("Date"); dateValue != "" {
			if parsed, err := HTTPDate(dateValue); err == nil {
				date = parsed
			}
		}
		if lifetime := expires.Sub(date); lifetime > 0 {
			return lifetime
		}
	}
	return 0
}

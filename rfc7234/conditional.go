package rfc7234

import (
	"net/http"
	"strings"
	"time"
)

// §  4.3.2.  Handling a Received Validation Request
// §
// §     [...] a cache recipient SHOULD generate a 304 (Not Modified)
// §     response if [...] the condition in an If-None-Match [...] evaluates
// §     to false.

// NotModified evaluates the conditional headers of a request against a
// stored response. It reports whether the stored response may be replayed
// as a 304 without its body. If-None-Match takes precedence over the
// date-based validators; the stored Last-Modified (falling back to Date,
// then to the stored-at timestamp) serves as validation timestamp.
func NotModified(reqHeader, storedHeader http.Header, storedAt time.Time) bool {
	if inm := ListHeader(reqHeader, "If-None-Match"); len(inm) > 0 {
		return etagMatch(inm, storedHeader.Get("ETag"))
	}
	lastModified := validationTime(storedHeader, storedAt)
	if ims := reqHeader.Get("If-Modified-Since"); ims != "" {
		if since, err := HTTPDate(ims); err == nil {
			return !lastModified.After(since)
		}
	}
	if ius := reqHeader.Get("If-Unmodified-Since"); ius != "" {
		if since, err := HTTPDate(ius); err == nil {
			return !lastModified.After(since)
		}
	}
	return false
}

// validationTime returns the timestamp the date-based validators are
// evaluated against.
func validationTime(storedHeader http.Header, storedAt time.Time) time.Time {
	if lm := storedHeader.Get("Last-Modified"); lm != "" {
		if t, err := HTTPDate(lm); err == nil {
			return t
		}
	}
	if date := storedHeader.Get("Date"); date != "" {
		if t, err := HTTPDate(date); err == nil {
			return t
		}
	}
	return storedAt
}

// etagMatch reports whether any member of an If-None-Match field value
// matches the stored entity-tag, using weak comparison as required for
// If-None-Match.
func etagMatch(ifNoneMatch []string, etag string) bool {
	for _, candidate := range ifNoneMatch {
		if candidate == "*" {
			return true
		}
		if etag != "" && weakEqual(candidate, etag) {
			return true
		}
	}
	return false
}

func weakEqual(a, b string) bool {
	return stripWeak(a) == stripWeak(b)
}

func stripWeak(etag string) string {
	return strings.TrimPrefix(etag, "W/")
}

// ValidatorHeaders lists the stored header fields replayed on a 304
// response, per RFC 7232 §4.1.
var ValidatorHeaders = []string{
	"Cache-Control", "Content-Location", "Date", "ETag", "Expires", "Last-Modified", "Vary",
}

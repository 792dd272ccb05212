// Package rfc9211 implements the Cache-Status HTTP response header field.
package rfc9211

import "fmt"

type Status string

const (
	StatusHit Status = "hit"
	StatusFwd Status = "fwd"
)

type FwdReason string

const (
	// The cache was configured to not handle this request.
	FwdReasonBypass FwdReason = "bypass"

	// The request method's semantics require the request to be forwarded.
	FwdReasonMethod FwdReason = "method"

	// The cache did not contain any responses that matched the request URI.
	FwdReasonUriMiss FwdReason = "uri-miss"

	// The cache contained a response that matched the request URI, but it
	// could not select a response based upon this request's header fields
	// and stored Vary header fields.
	FwdReasonVaryMiss FwdReason = "vary-miss"

	// The cache did not contain any responses that could be used to
	// satisfy this request (to be used when an implementation cannot
	// distinguish between uri-miss and vary-miss).
	FwdReasonMiss FwdReason = "miss"

	// The cache was able to select a fresh response for the request, but
	// the request's semantics (e.g., Cache-Control request directives)
	// did not allow its use.
	FwdReasonRequest FwdReason = "request"

	// The cache was able to select a response for the request, but it was
	// stale.
	FwdReasonStale FwdReason = "stale"
)

// CacheStatus is one cache's entry on the Cache-Status header list.
type CacheStatus struct {
	Status    Status
	FwdReason FwdReason
	// Stored indicates the forwarded response was stored in the cache.
	Stored bool
	// TimeToLive is the remaining freshness of the response in seconds.
	TimeToLive int
	detail     string
}

// Hit marks the response as served from cache.
func (cs *CacheStatus) Hit() {
	cs.Status = StatusHit
	cs.FwdReason = ""
}

// Forward marks the request as forwarded for the given reason.
func (cs *CacheStatus) Forward(reason FwdReason) {
	cs.Status = StatusFwd
	cs.FwdReason = reason
}

// Detail sets the implementation-specific detail parameter.
func (cs *CacheStatus) Detail(detail string) {
	cs.detail = detail
}

// String serializes the entry for use as a Cache-Status header value.
func (cs *CacheStatus) String() string {
	status := fmt.Sprintf("Respcache; %s", cs.Status)
	if cs.Status == StatusFwd && cs.FwdReason != "" {
		status = fmt.Sprintf("%s=%s", status, cs.FwdReason)
	}
	if cs.Stored {
		status += "; stored"
	}
	if cs.Status == StatusHit && cs.TimeToLive > 0 {
		status = fmt.Sprintf("%s; ttl=%d", status, cs.TimeToLive)
	}
	if cs.detail != "" {
		status += "; detail=" + cs.detail
	}
	return status
}

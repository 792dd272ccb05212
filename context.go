package respcache

import (
	"context"
	"net/http"
)

type overridesKey struct{}

// overrides carries the per-request cache metadata handlers may set while
// executing under the middleware. It lives exactly one request and is only
// touched from the request's own goroutine.
type overrides struct {
	varyByHeaders   []string
	varyByQueryKeys []string
	unbuffered      bool
}

// withOverrides installs a mutable overrides value on the request context.
func withOverrides(r *http.Request) (*http.Request, *overrides) {
	o := &overrides{}
	return r.WithContext(context.WithValue(r.Context(), overridesKey{}, o)), o
}

func overridesFrom(r *http.Request) *overrides {
	o, _ := r.Context().Value(overridesKey{}).(*overrides)
	return o
}

// VaryByQuery nominates query parameters the response being produced
// varies by. Call it from a handler running under the middleware; outside
// of one it is a no-op. "*" selects all parameters present on the request.
func VaryByQuery(r *http.Request, keys ...string) {
	if o := overridesFrom(r); o != nil {
		o.varyByQueryKeys = append(o.varyByQueryKeys, keys...)
	}
}

// VaryByHeader nominates request headers the response being produced
// varies by, complementing the response's own Vary header.
func VaryByHeader(r *http.Request, names ...string) {
	if o := overridesFrom(r); o != nil {
		o.varyByHeaders = append(o.varyByHeaders, names...)
	}
}

// MarkUnbuffered signals that the response body is being transferred
// outside of normal buffered writes, for example through a sendfile-style
// zero-copy mechanism. Such a response is streamed but never stored.
func MarkUnbuffered(r *http.Request) {
	if o := overridesFrom(r); o != nil {
		o.unbuffered = true
	}
}

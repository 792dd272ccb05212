// Package cachekey builds deterministic cache keys from HTTP requests.
//
// A base key identifies a resource by method, scheme, host and path. When a
// stored response nominates Vary rules, a varied key derived from the base
// key additionally encodes the selected header and query values, so each
// variant gets its own entry.
package cachekey

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

const (
	// partSeparator joins key components. Component values are
	// query-escaped, so the separator cannot appear inside them.
	partSeparator = "\x1f"
	varySeparator = "\n"
	// absentValue marks a nominated header that is missing from the
	// request, distinguishing it from one present with an empty value.
	// Escaped values can never contain a raw NUL.
	absentValue = "\x00"
)

// PartitionHook lets callers prepend and append opaque strings to every
// cache key, e.g. for multi-tenant partitioning. Implementations must not
// modify the request.
type PartitionHook interface {
	Prefix(r *http.Request) string
	Suffix(r *http.Request) string
}

// NoPartition is the default PartitionHook. It contributes nothing.
type NoPartition struct{}

func (NoPartition) Prefix(*http.Request) string { return "" }
func (NoPartition) Suffix(*http.Request) string { return "" }

// Keyer builds cache keys for requests.
type Keyer struct {
	// Partition contributes an opaque prefix and suffix to every key.
	Partition PartitionHook
	// CaseSensitivePaths controls whether the request path keeps its
	// case in the key. Header and query parameter names are always
	// compared case-insensitively regardless of this setting.
	CaseSensitivePaths bool
}

// NewKeyer returns a Keyer with default settings: no partitioning and
// case-sensitive paths.
func NewKeyer() Keyer {
	return Keyer{Partition: NoPartition{}, CaseSensitivePaths: true}
}

// BaseKey returns the cache key for a request without any vary components.
func (k Keyer) BaseKey(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	path := r.URL.EscapedPath()
	if !k.CaseSensitivePaths {
		path = strings.ToLower(path)
	}
	partition := k.Partition
	if partition == nil {
		partition = NoPartition{}
	}
	parts := []string{
		url.QueryEscape(partition.Prefix(r)),
		strings.ToUpper(r.Method),
		scheme,
		url.QueryEscape(r.Host),
		path,
		url.QueryEscape(partition.Suffix(r)),
	}
	return strings.Join(parts, partSeparator)
}

// VariedKey derives the key for the variant of base selected by the given
// rules and the current request. All requests on which none of the
// nominated headers or query parameters are present share one degenerate
// variant key, kept distinct from the base key itself (the base key holds
// the vary marker).
func (k Keyer) VariedKey(base string, r *http.Request, rules VaryRules) string {
	components := headerComponents(r, rules.Headers)
	components = append(components, queryComponents(r, rules.QueryKeys)...)
	return base + varySeparator + strings.Join(components, varySeparator)
}

func headerComponents(r *http.Request, names []string) []string {
	names = normalizeNames(names)
	anyPresent := false
	for _, name := range names {
		if len(r.Header.Values(name)) > 0 {
			anyPresent = true
			break
		}
	}
	if !anyPresent {
		return nil
	}
	components := make([]string, 0, len(names))
	for _, name := range names {
		values := r.Header.Values(name)
		if len(values) == 0 {
			components = append(components, "h:"+name+"="+absentValue)
			continue
		}
		components = append(components, "h:"+name+"="+escapeValues(values))
	}
	return components
}

func queryComponents(r *http.Request, keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	// merge parameters whose names differ only in case
	byName := make(map[string][]string)
	for name, values := range r.URL.Query() {
		lower := strings.ToLower(name)
		byName[lower] = append(byName[lower], values...)
	}
	var selected []string
	if containsWildcard(keys) {
		for name := range byName {
			selected = append(selected, name)
		}
	} else {
		for _, key := range normalizeNames(keys) {
			if _, ok := byName[key]; ok {
				selected = append(selected, key)
			}
		}
	}
	sort.Strings(selected)
	components := make([]string, 0, len(selected))
	for _, name := range selected {
		values := byName[name]
		// value order must not depend on map iteration
		sort.Strings(values)
		components = append(components, "q:"+name+"="+escapeValues(values))
	}
	return components
}

// normalizeNames lowercases, deduplicates and sorts a name list.
func normalizeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		lower := strings.ToLower(strings.TrimSpace(name))
		if lower == "" || seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, lower)
	}
	sort.Strings(out)
	return out
}

func containsWildcard(keys []string) bool {
	for _, key := range keys {
		if key == "*" {
			return true
		}
	}
	return false
}

func escapeValues(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = url.QueryEscape(v)
	}
	return strings.Join(escaped, ",")
}

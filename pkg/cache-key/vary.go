package cachekey

import (
	"net/http"
	"strings"
)

// VaryRules nominate the request header fields and query parameter names
// whose values select a stored variant. Names are compared
// case-insensitively; a "*" element among QueryKeys selects all parameters
// present on the request. The zero value does not vary.
type VaryRules struct {
	Headers   []string
	QueryKeys []string
}

// IsZero reports whether the rules select nothing.
func (v VaryRules) IsZero() bool {
	return len(v.Headers) == 0 && len(v.QueryKeys) == 0
}

// Normalize returns rules with names lowercased, deduplicated and sorted,
// so that equal rule sets compare and serialize identically.
func (v VaryRules) Normalize() VaryRules {
	return VaryRules{
		Headers:   normalizeNames(v.Headers),
		QueryKeys: normalizeNames(v.QueryKeys),
	}
}

// Merge unions two rule sets.
func (v VaryRules) Merge(other VaryRules) VaryRules {
	return VaryRules{
		Headers:   append(append([]string{}, v.Headers...), other.Headers...),
		QueryKeys: append(append([]string{}, v.QueryKeys...), other.QueryKeys...),
	}.Normalize()
}

// VaryFromResponse reads the Vary header of a produced response into rules.
// A wildcard Vary is returned as is; storability policy rejects it before
// any key is built.
func VaryFromResponse(header http.Header) VaryRules {
	var rules VaryRules
	for _, value := range header.Values("Vary") {
		for _, field := range strings.Split(value, ",") {
			if field = strings.TrimSpace(field); field != "" {
				rules.Headers = append(rules.Headers, field)
			}
		}
	}
	return rules.Normalize()
}

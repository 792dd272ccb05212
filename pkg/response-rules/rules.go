// Package responserules applies configured Cache-Control defaults and
// overrides to produced responses, so handlers (or proxied origins) that
// send no caching headers can still be cached.
package responserules

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

type Rules []Rule

// Rule matches requests by path and decorates the matching responses.
type Rule struct {
	// Prefix matches all paths starting with the given string.
	Prefix string `yaml:"prefix"`
	// Path matches one exact path.
	Path string `yaml:"path"`
	// Default is the Cache-Control to set when the response has none.
	Default string `yaml:"default"`
	// Override replaces the response Cache-Control unconditionally.
	Override string `yaml:"override"`
	// Headers are set on the response verbatim.
	Headers map[string]string `yaml:"headers"`
}

// Apply decorates the headers of a produced response according to the
// first matching rule. Only successful GET responses are decorated.
func (r Rules) Apply(req *http.Request, statusCode int, header http.Header) {
	if statusCode != http.StatusOK || req.Method != http.MethodGet {
		return
	}
	rule := r.find(req)
	if rule == nil {
		return
	}
	if rule.Override != "" {
		log.Trace().Str("path", req.URL.Path).Msg("Overriding Cache-Control header")
		header.Set("Cache-Control", rule.Override)
	} else if rule.Default != "" && header.Get("Cache-Control") == "" {
		log.Trace().Str("path", req.URL.Path).Msg("Applying default Cache-Control header")
		header.Set("Cache-Control", rule.Default)
	}
	for name, value := range rule.Headers {
		header.Set(name, value)
	}
}

func (r Rules) find(req *http.Request) *Rule {
	for i, rule := range r {
		if rule.Path != "" && rule.Path != req.URL.Path {
			continue
		}
		if rule.Prefix != "" && !strings.HasPrefix(req.URL.Path, rule.Prefix) {
			continue
		}
		return &r[i]
	}
	return nil
}

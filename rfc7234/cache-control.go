package rfc7234

import (
	"strconv"
	"strings"
	"time"
)

// CacheControl holds the parsed directives of one or more Cache-Control
// header fields. Directive names are compared case-insensitively, arguments
// keep their case.
type CacheControl struct {
	directives map[string]string
}

// Get returns the argument of the given directive and whether it is present.
func (c CacheControl) Get(directive string) (string, bool) {
	val, ok := c.directives[directive]
	return val, ok
}

// HasDirective checks for the presence of the given directive.
func (c CacheControl) HasDirective(directive string) bool {
	_, ok := c.Get(directive)
	return ok
}

// MaxAge returns the max-age directive as a duration.
// Invalid delta-seconds count as absent, which per RFC 7234 §4.2.1 makes
// the response stale.
func (c CacheControl) MaxAge() (time.Duration, bool) {
	return c.deltaSecondsDirective("max-age")
}

// SMaxAge returns the s-maxage directive as a duration.
func (c CacheControl) SMaxAge() (time.Duration, bool) {
	return c.deltaSecondsDirective("s-maxage")
}

func (c CacheControl) deltaSecondsDirective(directive string) (time.Duration, bool) {
	arg, ok := c.Get(directive)
	if !ok {
		return 0, false
	}
	seconds, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

// ParseCacheControl takes Cache-Control headers as a slice of strings
// and returns an instance of CacheControl.
func ParseCacheControl(headers []string) CacheControl {
	m := make(map[string]string)
	// note setting map values like this means last defined directive wins
	for _, header := range headers {
		for _, directive := range strings.Split(header, ",") {
			directive = strings.TrimSpace(directive)
			if directive == "" {
				continue
			}
			parts := strings.SplitN(directive, "=", 2)
			name := strings.ToLower(parts[0])
			var arg string
			if len(parts) > 1 {
				// arguments may use token or quoted-string syntax
				arg = strings.Trim(parts[1], "\"")
			}
			m[name] = arg
		}
	}
	return CacheControl{m}
}

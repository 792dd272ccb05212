package rfc7234

import (
	"net/http"
	"strings"
	"time"
)

// ListHeader returns the elements of a comma-separated list header,
// combining all field lines of the given name.
func ListHeader(h http.Header, name string) []string {
	var elems []string
	for _, value := range h.Values(name) {
		for _, elem := range strings.Split(value, ",") {
			elem = strings.TrimSpace(elem)
			if elem != "" {
				elems = append(elems, elem)
			}
		}
	}
	return elems
}

// HTTPDate parses an HTTP-date field value.
func HTTPDate(value string) (time.Time, error) {
	return http.ParseTime(value)
}

// ToHTTPDate formats a time as an HTTP-date (IMF-fixdate, GMT).
func ToHTTPDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

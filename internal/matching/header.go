package matching

import (
	"net/http"
	"strings"
)

// MatchHeaders checks that every expected header matches.
// Header names are case-insensitive, values support the patterns accepted by
// MatchHeaderPattern.
func MatchHeaders(expected map[string]string, headers http.Header) bool {
	for name, value := range expected {
		if !MatchHeaderPattern(name, value, headers) {
			return false
		}
	}
	return true
}

// MatchHeaderPattern checks if a header matches a pattern.
// Supports prefix (value*), suffix (*value) and contains (*value*) patterns;
// "*" alone accepts any value. The header must be present: an empty pattern
// matches a header sent with an empty value, never a missing one.
func MatchHeaderPattern(name, pattern string, headers http.Header) bool {
	values, ok := headers[http.CanonicalHeaderKey(name)]
	if !ok || len(values) == 0 {
		return false
	}
	return matchWildcardValue(pattern, values[0])
}

func matchWildcardValue(pattern, actual string) bool {
	if !strings.Contains(pattern, "*") {
		return actual == pattern
	}

	prefixed := strings.HasPrefix(pattern, "*")
	suffixed := strings.HasSuffix(pattern, "*")
	switch {
	case prefixed && suffixed:
		return strings.Contains(actual, strings.Trim(pattern, "*"))
	case suffixed:
		return strings.HasPrefix(actual, strings.TrimSuffix(pattern, "*"))
	case prefixed:
		return strings.HasSuffix(actual, strings.TrimPrefix(pattern, "*"))
	}
	return false
}

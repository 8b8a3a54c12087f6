package matching

import (
	"net/url"
)

// MatchQueryParams checks if all specified query parameters match.
// Values support the same wildcard patterns as headers.
func MatchQueryParams(expected map[string]string, params url.Values) bool {
	for name, value := range expected {
		if !MatchQueryParam(name, value, params) {
			return false
		}
	}
	return true
}

// MatchQueryParam checks a single query parameter.
func MatchQueryParam(name, expected string, params url.Values) bool {
	if _, ok := params[name]; !ok {
		return false
	}
	return matchWildcardValue(expected, params.Get(name))
}

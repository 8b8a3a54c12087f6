package matching

import (
	"fmt"
	"regexp"
)

// CompilePathPattern compiles a path pattern. Patterns use RE2 syntax.
func CompilePathPattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid url pattern %q: %w", pattern, err)
	}
	return re, nil
}

// MatchPathPattern reports whether re occurs anywhere in path.
//
// The search is unanchored: "address/\d+" matches "/v1/address/45/x". A pattern
// that wants to pin the start or end of the path says so itself with ^ or $.
// Named capture groups are returned for diagnostics.
func MatchPathPattern(re *regexp.Regexp, path string) (matched bool, captures map[string]string) {
	if re == nil {
		return false, nil
	}

	match := re.FindStringSubmatch(path)
	if match == nil {
		return false, nil
	}

	captures = make(map[string]string)
	for i, name := range re.SubexpNames() {
		if i > 0 && name != "" && i < len(match) {
			captures[name] = match[i]
		}
	}
	return true, captures
}

// MatchMethod compares methods exactly. HTTP methods are case-sensitive.
func MatchMethod(expected, actual string) bool {
	return expected == actual
}

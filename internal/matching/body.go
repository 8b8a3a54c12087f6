package matching

import (
	"bytes"
	"fmt"
	"regexp"
)

// MatchBodyEquals reports whether body is byte-for-byte equal to expected.
// An empty expected value only matches an empty body.
func MatchBodyEquals(body []byte, expected string) bool {
	return string(body) == expected
}

// MatchBodyContains reports whether body contains the substring.
func MatchBodyContains(body []byte, contains string) bool {
	if contains == "" {
		return true
	}
	return bytes.Contains(body, []byte(contains))
}

// MatchBodyPattern reports whether the compiled pattern occurs in body.
func MatchBodyPattern(re *regexp.Regexp, body []byte) bool {
	if re == nil {
		return true
	}
	return re.Match(body)
}

// CompileBodyPattern compiles a body regex at declaration time.
func CompileBodyPattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid body pattern %q: %w", pattern, err)
	}
	return re, nil
}

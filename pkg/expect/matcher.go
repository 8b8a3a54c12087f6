package expect

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr/vm"

	"github.com/getmockd/stubserver/internal/matching"
)

// Matcher holds the criteria a request must satisfy. Method and URLPattern
// are required; every other field is optional and all present fields must
// hold.
type Matcher struct {
	// Method is compared exactly with the request method.
	Method string `json:"method" yaml:"method"`

	// URLPattern is an RE2 regular expression searched anywhere in the
	// request path. The query string is not part of the path.
	URLPattern string `json:"url" yaml:"url"`

	// Body, when non-nil, must equal the request body exactly. A pointer to
	// the empty string requires an empty body.
	Body *string `json:"data,omitempty" yaml:"data,omitempty"`

	BodyContains string                 `json:"bodyContains,omitempty" yaml:"bodyContains,omitempty"`
	BodyPattern  string                 `json:"bodyPattern,omitempty" yaml:"bodyPattern,omitempty"`
	BodyJSONPath map[string]interface{} `json:"bodyJsonPath,omitempty" yaml:"bodyJsonPath,omitempty"`
	BodyXPath    map[string]string      `json:"bodyXPath,omitempty" yaml:"bodyXPath,omitempty"`
	Headers      map[string]string      `json:"headers,omitempty" yaml:"headers,omitempty"`
	Query        map[string]string      `json:"query,omitempty" yaml:"query,omitempty"`

	// Condition is an expr-lang boolean expression, see matching.ConditionEnv.
	Condition string `json:"when,omitempty" yaml:"when,omitempty"`

	compiled  bool
	urlRe     *regexp.Regexp
	bodyRe    *regexp.Regexp
	jsonPath  []matching.JSONPathCondition
	condition *vm.Program
}

// Compile validates the matcher and compiles its patterns. It is called by
// Registry.Add, so a bad pattern is reported at declaration time rather than
// when a request arrives.
func (m *Matcher) Compile() error {
	var errs []error

	if m.Method == "" {
		errs = append(errs, errors.New("method is required"))
	} else if strings.ContainsAny(m.Method, " \t\r\n") {
		errs = append(errs, fmt.Errorf("invalid method %q", m.Method))
	}

	re, err := matching.CompilePathPattern(m.URLPattern)
	if err != nil {
		errs = append(errs, err)
	}
	m.urlRe = re

	m.bodyRe = nil
	if m.BodyPattern != "" {
		re, err := matching.CompileBodyPattern(m.BodyPattern)
		if err != nil {
			errs = append(errs, err)
		}
		m.bodyRe = re
	}

	m.jsonPath = nil
	if len(m.BodyJSONPath) > 0 {
		compiled, err := matching.CompileJSONPath(m.BodyJSONPath)
		if err != nil {
			errs = append(errs, err)
		}
		m.jsonPath = compiled
	}

	m.condition = nil
	if m.Condition != "" {
		program, err := matching.CompileCondition(m.Condition)
		if err != nil {
			errs = append(errs, err)
		}
		m.condition = program
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	m.compiled = true
	return nil
}

// Matches reports whether req satisfies every criterion. Compile must have
// succeeded first.
func (m *Matcher) Matches(req *Request) bool {
	if !m.compiled {
		return false
	}
	if !matching.MatchMethod(m.Method, req.Method) {
		return false
	}
	if ok, _ := matching.MatchPathPattern(m.urlRe, req.Path); !ok {
		return false
	}
	if m.Body != nil && !matching.MatchBodyEquals(req.Body, *m.Body) {
		return false
	}
	if !matching.MatchBodyContains(req.Body, m.BodyContains) {
		return false
	}
	if m.bodyRe != nil && !matching.MatchBodyPattern(m.bodyRe, req.Body) {
		return false
	}
	if len(m.jsonPath) > 0 && matching.MatchJSONPath(m.jsonPath, req.Body) != len(m.jsonPath) {
		return false
	}
	if len(m.BodyXPath) > 0 && matching.MatchXPath(m.BodyXPath, req.Body) != len(m.BodyXPath) {
		return false
	}
	if !matching.MatchHeaders(m.Headers, req.Header) {
		return false
	}
	if len(m.Query) > 0 && !matching.MatchQueryParams(m.Query, req.Query()) {
		return false
	}
	if m.condition != nil {
		env := matching.NewConditionEnv(req.Method, req.Path, req.Query(), req.Header, req.Body)
		if !matching.MatchCondition(m.condition, env) {
			return false
		}
	}
	return true
}

// Breakdown evaluates every criterion without short-circuiting, for near-miss
// diagnostics on unmatched requests.
func (m *Matcher) Breakdown(req *Request) *matching.NearMiss {
	nm := &matching.NearMiss{}
	if !m.compiled {
		nm.Finish()
		return nm
	}

	nm.Add(scored("method", matching.MatchMethod(m.Method, req.Method), matching.ScoreMethod, m.Method, req.Method))

	pathOK, _ := matching.MatchPathPattern(m.urlRe, req.Path)
	nm.Add(scored("urlPattern", pathOK, matching.ScorePathPattern, m.URLPattern, req.Path))

	if m.Body != nil {
		nm.Add(scored("body", matching.MatchBodyEquals(req.Body, *m.Body), matching.ScoreBodyEquals,
			matching.Truncate(*m.Body, 200), matching.Truncate(string(req.Body), 200)))
	}
	if m.BodyContains != "" {
		nm.Add(scored("bodyContains", matching.MatchBodyContains(req.Body, m.BodyContains), matching.ScoreBodyContains,
			m.BodyContains, nil))
	}
	if m.bodyRe != nil {
		nm.Add(scored("bodyPattern", matching.MatchBodyPattern(m.bodyRe, req.Body), matching.ScoreBodyPattern,
			m.BodyPattern, nil))
	}
	if len(m.jsonPath) > 0 {
		hits := matching.MatchJSONPath(m.jsonPath, req.Body)
		nm.Add(matching.FieldResult{
			Field:    "bodyJSONPath",
			Matched:  hits == len(m.jsonPath),
			Score:    hits * matching.ScoreJSONPathCondition,
			MaxScore: len(m.jsonPath) * matching.ScoreJSONPathCondition,
			Expected: m.BodyJSONPath,
		})
	}
	if len(m.BodyXPath) > 0 {
		hits := matching.MatchXPath(m.BodyXPath, req.Body)
		nm.Add(matching.FieldResult{
			Field:    "bodyXPath",
			Matched:  hits == len(m.BodyXPath),
			Score:    hits * matching.ScoreXPathCondition,
			MaxScore: len(m.BodyXPath) * matching.ScoreXPathCondition,
			Expected: m.BodyXPath,
		})
	}
	if len(m.Headers) > 0 {
		nm.Add(keyedBreakdown("headers", m.Headers, matching.ScoreHeader, func(k, v string) (bool, string) {
			return matching.MatchHeaderPattern(k, v, req.Header), req.Header.Get(k)
		}))
	}
	if len(m.Query) > 0 {
		query := req.Query()
		nm.Add(keyedBreakdown("query", m.Query, matching.ScoreQueryParam, func(k, v string) (bool, string) {
			return matching.MatchQueryParam(k, v, query), query.Get(k)
		}))
	}
	if m.condition != nil {
		env := matching.NewConditionEnv(req.Method, req.Path, req.Query(), req.Header, req.Body)
		nm.Add(scored("condition", matching.MatchCondition(m.condition, env), matching.ScoreCondition, m.Condition, nil))
	}

	nm.Finish()
	return nm
}

func scored(field string, ok bool, weight int, expected, actual interface{}) matching.FieldResult {
	score := 0
	if ok {
		score = weight
	}
	return matching.FieldResult{
		Field:    field,
		Matched:  ok,
		Score:    score,
		MaxScore: weight,
		Expected: expected,
		Actual:   actual,
	}
}

func keyedBreakdown(field string, expected map[string]string, weight int, check func(k, v string) (bool, string)) matching.FieldResult {
	res := matching.FieldResult{Field: field, Matched: true, MaxScore: len(expected) * weight}
	details := make([]matching.KeyDetail, 0, len(expected))
	for k, v := range expected {
		ok, actual := check(k, v)
		if actual == "" {
			actual = "(missing)"
		}
		if ok {
			res.Score += weight
		} else {
			res.Matched = false
		}
		details = append(details, matching.KeyDetail{Key: k, Expected: v, Actual: actual, Matched: ok})
	}
	res.Details = details
	return res
}

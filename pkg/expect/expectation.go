package expect

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Expectation is one declared request and the response it produces.
type Expectation struct {
	// ID is assigned by Registry.Add when empty.
	ID string

	// Name is an optional label used in verification reports.
	Name string

	Matcher  Matcher
	Capture  *Capture
	Response Response

	satisfied atomic.Bool
	matchedAt atomic.Int64
}

// Satisfied reports whether a request has consumed the expectation.
func (e *Expectation) Satisfied() bool {
	return e.satisfied.Load()
}

// MatchedAt returns when the expectation was consumed, or the zero time.
func (e *Expectation) MatchedAt() time.Time {
	ns := e.matchedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (e *Expectation) consume(req *Request) {
	e.satisfied.Store(true)
	e.matchedAt.Store(time.Now().UnixNano())
	if e.Capture != nil {
		e.Capture.record(req)
	}
}

// String renders the expectation for reports, e.g. `PUT /address/\d+$ "update"`.
func (e *Expectation) String() string {
	s := e.Matcher.Method + " " + e.Matcher.URLPattern
	if e.Matcher.Body != nil {
		s += fmt.Sprintf(" with body %q", truncateBody(*e.Matcher.Body))
	}
	if e.Name != "" {
		s += fmt.Sprintf(" %q", e.Name)
	}
	return s
}

func truncateBody(s string) string {
	if len(s) <= 60 {
		return s
	}
	return s[:60] + "..."
}

package expect

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/getmockd/stubserver/internal/matching"
)

// Registry is the ordered set of expectations owned by one server.
type Registry struct {
	mu           sync.Mutex
	expectations []*Expectation
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add compiles and appends an expectation. Duplicates are allowed and are
// consumed in declaration order.
func (r *Registry) Add(e *Expectation) error {
	if e == nil {
		return fmt.Errorf("%w: nil expectation", ErrInvalidExpectation)
	}
	if err := e.Matcher.Compile(); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrInvalidExpectation, e.Matcher.Method, e.Matcher.URLPattern, err)
	}
	if err := e.Response.Validate(); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrInvalidExpectation, e.Matcher.Method, e.Matcher.URLPattern, err)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.expectations = append(r.expectations, e)
	return nil
}

// Match hands req to the first unsatisfied expectation that matches it,
// marks it consumed and fills its capture. The scan and the mark happen
// under one lock, so concurrent requests never consume the same expectation.
func (r *Registry) Match(req *Request) (*Expectation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.expectations {
		if e.Satisfied() {
			continue
		}
		if e.Matcher.Matches(req) {
			e.consume(req)
			return e, true
		}
	}
	return nil, false
}

// NearMisses ranks the expectations closest to matching req. Consumed
// expectations are included, since a repeated call is a common cause of an
// unmatched request.
func (r *Registry) NearMisses(req *Request, topN int) []matching.NearMiss {
	r.mu.Lock()
	candidates := make([]matching.NearMiss, 0, len(r.expectations))
	for _, e := range r.expectations {
		nm := e.Matcher.Breakdown(req)
		nm.ExpectationID = e.ID
		nm.Name = e.Name
		nm.Satisfied = e.Satisfied()
		nm.Finish()
		candidates = append(candidates, *nm)
	}
	r.mu.Unlock()

	return matching.RankNearMisses(candidates, topN)
}

// Verify returns nil if every expectation was consumed, otherwise a
// *VerificationError naming the others in declaration order.
func (r *Registry) Verify() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []*Expectation
	for _, e := range r.expectations {
		if !e.Satisfied() {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	return &VerificationError{Unsatisfied: pending, Total: len(r.expectations)}
}

// Expectations returns every expectation in declaration order.
func (r *Registry) Expectations() []*Expectation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Expectation(nil), r.expectations...)
}

// Pending returns the expectations not yet consumed.
func (r *Registry) Pending() []*Expectation {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []*Expectation
	for _, e := range r.expectations {
		if !e.Satisfied() {
			pending = append(pending, e)
		}
	}
	return pending
}

// Len returns the number of declared expectations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.expectations)
}

// Reset drops every expectation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expectations = nil
}

package expect

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidExpectation wraps every error Registry.Add reports.
var ErrInvalidExpectation = errors.New("invalid expectation")

// VerificationError lists the expectations no request consumed.
type VerificationError struct {
	Unsatisfied []*Expectation
	Total       int
}

func (e *VerificationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d expectations not satisfied:", len(e.Unsatisfied), e.Total)
	for _, exp := range e.Unsatisfied {
		b.WriteString("\n  - ")
		b.WriteString(exp.String())
	}
	return b.String()
}

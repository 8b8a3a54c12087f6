package matching

import (
	"fmt"
	"sort"
	"strings"
)

// FieldResult describes whether a single matcher field matched the request.
type FieldResult struct {
	Field    string      `json:"field"`
	Matched  bool        `json:"matched"`
	Score    int         `json:"score"`
	MaxScore int         `json:"maxScore"`
	Expected interface{} `json:"expected,omitempty"`
	Actual   interface{} `json:"actual,omitempty"`
	Details  interface{} `json:"details,omitempty"`
}

// KeyDetail describes the match result for a single header or query parameter.
type KeyDetail struct {
	Key      string `json:"key"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Matched  bool   `json:"matched"`
}

// NearMiss is an expectation that partially matched an unmatched request.
type NearMiss struct {
	ExpectationID    string        `json:"expectationId"`
	Name             string        `json:"name,omitempty"`
	Satisfied        bool          `json:"satisfied,omitempty"`
	Score            int           `json:"score"`
	MaxPossibleScore int           `json:"maxPossibleScore"`
	MatchPercentage  int           `json:"matchPercentage"`
	Fields           []FieldResult `json:"fields"`
	Reason           string        `json:"reason"`
}

// Add appends a field result and updates the running totals.
func (nm *NearMiss) Add(f FieldResult) {
	if f.Matched {
		nm.Score += f.Score
	}
	nm.MaxPossibleScore += f.MaxScore
	nm.Fields = append(nm.Fields, f)
}

// Finish computes the match percentage and reason once all fields are added.
// An already consumed expectation that matched every field is reported as
// such, since that is the usual cause of a repeated call going unmatched.
func (nm *NearMiss) Finish() {
	if nm.MaxPossibleScore > 0 {
		nm.MatchPercentage = (nm.Score * 100) / nm.MaxPossibleScore
	}
	nm.Reason = GenerateReason(nm.Fields)
	if nm.Satisfied && nm.Score == nm.MaxPossibleScore {
		nm.Reason = "all fields matched, but the expectation was already consumed"
	}
}

// RankNearMisses drops candidates with nothing matched, sorts the rest by
// score then percentage, and keeps the top N.
func RankNearMisses(candidates []NearMiss, topN int) []NearMiss {
	if topN <= 0 {
		topN = 3
	}

	ranked := make([]NearMiss, 0, len(candidates))
	for _, c := range candidates {
		if c.Score > 0 {
			ranked = append(ranked, c)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].MatchPercentage > ranked[j].MatchPercentage
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// GenerateReason creates a human-readable explanation of why an expectation
// partially matched but ultimately failed.
func GenerateReason(fields []FieldResult) string {
	if len(fields) == 0 {
		return "no fields to compare"
	}

	var matched []string
	var firstMismatch *FieldResult

	for i := range fields {
		if fields[i].Matched {
			matched = append(matched, fields[i].Field)
		} else if firstMismatch == nil {
			firstMismatch = &fields[i]
		}
	}

	if firstMismatch == nil {
		return "all specified fields matched"
	}
	if len(matched) == 0 {
		return formatMismatch(firstMismatch)
	}
	return joinFields(matched) + " matched, but " + formatMismatch(firstMismatch)
}

func formatMismatch(f *FieldResult) string {
	switch f.Field {
	case "method":
		return fmt.Sprintf("method expected %q, got %q", f.Expected, f.Actual)
	case "urlPattern":
		return fmt.Sprintf("path expected to match %q, got %q", f.Expected, f.Actual)
	case "headers", "query":
		label := "header"
		if f.Field == "query" {
			label = "query param"
		}
		if details, ok := f.Details.([]KeyDetail); ok {
			for _, d := range details {
				if !d.Matched {
					return fmt.Sprintf("%s %s expected %q, got %q", label, d.Key, d.Expected, d.Actual)
				}
			}
		}
		return label + " mismatch"
	case "body":
		return fmt.Sprintf("body expected exact match %q", f.Expected)
	case "bodyContains":
		return fmt.Sprintf("body expected to contain %q", f.Expected)
	case "bodyPattern":
		return fmt.Sprintf("body expected to match pattern %q", f.Expected)
	case "bodyJSONPath":
		return "body JSONPath condition not satisfied"
	case "bodyXPath":
		return "body XPath condition not satisfied"
	case "condition":
		return fmt.Sprintf("condition %q evaluated to false", f.Expected)
	default:
		return f.Field + " did not match"
	}
}

// joinFields joins field names with commas and "and".
func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	case 2:
		return fields[0] + " and " + fields[1]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1]
	}
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

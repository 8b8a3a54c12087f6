package requestlog

// NearMissInfo is a log-friendly summary of a near-miss match.
// Stored on request log entries for unmatched requests.
type NearMissInfo struct {
	// ExpectationID is the ID of the expectation that partially matched.
	ExpectationID string `json:"expectationId"`

	// Name is the display name of the expectation (may be empty).
	Name string `json:"name,omitempty"`

	// MatchPercentage is how close the match was (0-100).
	MatchPercentage int `json:"matchPercentage"`

	// Reason is a human-readable explanation of why it didn't fully match.
	Reason string `json:"reason"`
}

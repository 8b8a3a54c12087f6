// Package matching provides the request matching primitives used by stub
// expectations.
//
// Every primitive answers a single question about one request field:
//
//   - Path matching: RE2 regular expressions searched anywhere in the path
//   - Method matching: exact comparison
//   - Header and query matching: exact values and simple wildcard patterns
//   - Body matching: exact, contains, regex, JSONPath and XPath
//   - Conditions: boolean expr-lang expressions over the request
//
// Expectations are selected first-match-wins, so primitives only report
// matched or not matched. The score constants in scores.go are used to rank
// near misses when a request matches nothing, which is what the diagnostics
// in nearmiss.go report back to the client.
package matching

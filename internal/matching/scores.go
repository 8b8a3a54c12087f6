package matching

// Weights used to rank near misses. A higher score means the expectation was
// closer to accepting the request.
const (
	// ScoreMethod is the weight of a method match.
	ScoreMethod = 10

	// ScorePathPattern is the weight of a path regex match.
	ScorePathPattern = 14

	// ScoreHeader is the weight of each matched header.
	ScoreHeader = 10

	// ScoreQueryParam is the weight of each matched query parameter.
	ScoreQueryParam = 5
)

// Body weights. Exact equality is the most specific body constraint.
const (
	ScoreBodyEquals   = 25
	ScoreBodyPattern  = 22
	ScoreBodyContains = 20

	// ScoreJSONPathCondition is the weight per JSONPath condition.
	ScoreJSONPathCondition = 15

	// ScoreXPathCondition is the weight per XPath condition.
	ScoreXPathCondition = 15

	// ScoreCondition is the weight of a satisfied expr condition.
	ScoreCondition = 8
)

package matching

import (
	"fmt"
	"reflect"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// JSONPathCondition is a compiled JSONPath expression and the value it must
// produce.
type JSONPathCondition struct {
	Path     string
	Expr     jp.Expr
	Expected interface{}
}

// CompileJSONPath parses every JSONPath expression in conditions.
func CompileJSONPath(conditions map[string]interface{}) ([]JSONPathCondition, error) {
	compiled := make([]JSONPathCondition, 0, len(conditions))
	for path, expected := range conditions {
		x, err := jp.ParseString(path)
		if err != nil {
			return nil, fmt.Errorf("invalid JSONPath expression %q: %w", path, err)
		}
		compiled = append(compiled, JSONPathCondition{Path: path, Expr: x, Expected: expected})
	}
	return compiled, nil
}

// MatchJSONPath evaluates every condition against a JSON body and returns the
// number of conditions that held. A body that is not JSON satisfies none.
func MatchJSONPath(conditions []JSONPathCondition, body []byte) int {
	if len(conditions) == 0 {
		return 0
	}

	var data interface{}
	if err := oj.Unmarshal(body, &data); err != nil {
		return 0
	}

	matched := 0
	for _, c := range conditions {
		if matchSingleJSONPath(c, data) {
			matched++
		}
	}
	return matched
}

func matchSingleJSONPath(c JSONPathCondition, data interface{}) bool {
	results := c.Expr.Get(data)

	if exists, ok := existenceCheck(c.Expected); ok {
		return exists == (len(results) > 0)
	}

	// Wildcard paths can yield several values; any one of them may match.
	for _, result := range results {
		if valuesEqual(result, c.Expected) {
			return true
		}
	}
	return false
}

// existenceCheck recognises {"exists": bool} as an expected value.
func existenceCheck(expected interface{}) (exists bool, ok bool) {
	m, isMap := expected.(map[string]interface{})
	if !isMap || len(m) != 1 {
		return false, false
	}
	v, has := m["exists"]
	if !has {
		return false, false
	}
	b, isBool := v.(bool)
	return b, isBool
}

// valuesEqual compares a decoded JSON value with an expected value declared in
// Go or YAML, where integers and floats are interchangeable.
func valuesEqual(actual, expected interface{}) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if reflect.DeepEqual(actual, expected) {
		return true
	}

	a, aNum := toFloat64(actual)
	e, eNum := toFloat64(expected)
	if aNum && eNum {
		return a == e
	}
	return false
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}

package matching

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/ohler55/ojg/oj"
)

// ConditionEnv is the environment a condition expression is evaluated in.
//
//	method == "PUT" && len(body) > 0
//	headers["content-type"] startsWith "application/json"
//	json.name == "Chris"
type ConditionEnv struct {
	Method  string            `expr:"method"`
	Path    string            `expr:"path"`
	Query   map[string]string `expr:"query"`
	Headers map[string]string `expr:"headers"`
	Body    string            `expr:"body"`
	JSON    interface{}       `expr:"json"`
}

// NewConditionEnv builds the environment for one request. Header names are
// lower-cased and multi-valued fields keep their first value. JSON is nil when
// the body does not parse.
func NewConditionEnv(method, path string, query map[string][]string, headers http.Header, body []byte) ConditionEnv {
	env := ConditionEnv{
		Method:  method,
		Path:    path,
		Query:   make(map[string]string, len(query)),
		Headers: make(map[string]string, len(headers)),
		Body:    string(body),
	}
	for k, v := range query {
		if len(v) > 0 {
			env.Query[k] = v[0]
		}
	}
	for k, v := range headers {
		if len(v) > 0 {
			env.Headers[strings.ToLower(k)] = v[0]
		}
	}
	if len(body) > 0 {
		var data interface{}
		if err := oj.Unmarshal(body, &data); err == nil {
			env.JSON = data
		}
	}
	return env
}

// CompileCondition compiles a boolean condition expression.
func CompileCondition(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(ConditionEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", expression, err)
	}
	return program, nil
}

// MatchCondition runs a compiled condition. Evaluation errors, such as a
// field lookup on a nil json value, count as no match.
func MatchCondition(program *vm.Program, env ConditionEnv) bool {
	if program == nil {
		return true
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

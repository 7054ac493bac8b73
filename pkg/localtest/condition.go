package localtest

import (
	"fmt"
	"net/url"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// conditionEnv is what a When expression sees. Header looks a header up
// ignoring case and JSONPath queries a JSON body; headers, query and params
// are plain maps.
type conditionEnv struct {
	Method  string            `expr:"method"`
	Path    string            `expr:"path"`
	Target  string            `expr:"target"`
	Body    string            `expr:"body"`
	Headers map[string]string `expr:"headers"`
	Query   map[string]string `expr:"query"`
	Params  map[string]string `expr:"params"`

	log *RequestLog
}

// Header returns the named request header, "" when absent.
func (e conditionEnv) Header(name string) string {
	v, _ := e.log.Header(name)
	return v
}

// JSONPath returns the first value path selects in a JSON body, nil when
// nothing matches or the body is not JSON.
func (e conditionEnv) JSONPath(path string) any {
	results, err := e.log.JSONPath(path)
	if err != nil || len(results) == 0 {
		return nil
	}
	return results[0]
}

func newConditionEnv(log *RequestLog) conditionEnv {
	query := make(map[string]string)
	if values, err := url.ParseQuery(log.QueryString); err == nil {
		for k := range values {
			query[k] = values.Get(k)
		}
	}
	params := log.Parameters
	if params == nil {
		params = map[string]string{}
	}
	return conditionEnv{
		Method:  log.Method,
		Path:    log.Path,
		Target:  log.Target,
		Body:    log.Body,
		Headers: log.Headers,
		Query:   query,
		Params:  params,
		log:     log,
	}
}

func compileCondition(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(conditionEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling condition %q: %w", expression, err)
	}
	return program, nil
}

// evalCondition runs program against log. Evaluation errors count as a
// mismatch.
func evalCondition(program *vm.Program, log *RequestLog) bool {
	out, err := expr.Run(program, newConditionEnv(log))
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

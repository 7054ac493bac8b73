package localtest

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/ohler55/ojg/jp"
)

// JSONPath evaluates a JSONPath expression such as "$.user.name" or
// "$.items[*].id" against the JSON body and returns every match.
func (r *RequestLog) JSONPath(path string) ([]any, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("parsing JSONPath %q: %w", path, err)
	}
	var data any
	if err := json.Unmarshal([]byte(r.Body), &data); err != nil {
		return nil, fmt.Errorf("request body is not valid JSON: %w", err)
	}
	return x.Get(data), nil
}

// AssertJSONPath asserts that path selects at least one value JSON equal to
// expected. With wildcards any match is enough.
func (r *RequestLog) AssertJSONPath(t testing.TB, path string, expected any) {
	t.Helper()

	results, err := r.JSONPath(path)
	if err != nil {
		t.Errorf("%v\nbody: %s", err, r.Body)
		return
	}
	if len(results) == 0 {
		t.Errorf("JSONPath %q matched nothing\nbody: %s", path, r.Body)
		return
	}

	want, err := normalizeJSON(expected)
	if err != nil {
		t.Errorf("failed to marshal expected value: %v", err)
		return
	}
	for _, result := range results {
		if reflect.DeepEqual(result, want) {
			return
		}
	}
	t.Errorf("JSONPath %q value mismatch\nexpected: %v\nactual: %v", path, expected, results)
}

// normalizeJSON gives v the shape encoding/json decodes into, so numbers
// compare as float64 and structs as maps.
func normalizeJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

package localtest

import (
	"bytes"
	"encoding/json"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RequestLog is a request received by the server.
type RequestLog struct {
	// Method is the request method.
	Method string
	// Target is the request target as sent.
	Target string
	// Path is the target without its query.
	Path string
	// QueryString is the raw query.
	QueryString string
	// Headers are the request headers.
	Headers map[string]string
	// Body is the decoded request content.
	Body string
	// Parameters holds the decoded form parameters, nil when the body was
	// not a valid form.
	Parameters map[string]string
	// Route is "METHOD path" of the matched route, empty when none matched.
	Route string
}

// Header returns the value of the named header, ignoring case.
func (r *RequestLog) Header(name string) (string, bool) {
	if v, ok := r.Headers[name]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// AssertMethod asserts that the request used the expected method.
func (r *RequestLog) AssertMethod(t testing.TB, expected string) {
	t.Helper()

	if !strings.EqualFold(r.Method, expected) {
		t.Errorf("request method mismatch\nexpected: %q\nactual: %q", expected, r.Method)
	}
}

// AssertPath asserts that the request path matches.
func (r *RequestLog) AssertPath(t testing.TB, expected string) {
	t.Helper()

	if r.Path != expected {
		t.Errorf("request path mismatch\nexpected: %q\nactual: %q", expected, r.Path)
	}
}

// AssertHeader asserts that the request had the header with the expected value.
func (r *RequestLog) AssertHeader(t testing.TB, name, expected string) {
	t.Helper()

	actual, ok := r.Header(name)
	if !ok {
		t.Errorf("request does not have header %q", name)
		return
	}
	if actual != expected {
		t.Errorf("header %q value mismatch\nexpected: %q\nactual: %q", name, expected, actual)
	}
}

// AssertBody asserts that the request body equals expected.
func (r *RequestLog) AssertBody(t testing.TB, expected string) {
	t.Helper()

	if r.Body != expected {
		t.Errorf("request body does not match\nexpected: %q\nactual: %q", expected, r.Body)
	}
}

// AssertBodyContains asserts that the request body contains substr.
func (r *RequestLog) AssertBodyContains(t testing.TB, substr string) {
	t.Helper()

	if !strings.Contains(r.Body, substr) {
		t.Errorf("request body does not contain %q\nbody: %s", substr, r.Body)
	}
}

// AssertJSONBody asserts that the body is JSON equal to expected, which may
// be a string, []byte or any value to encode.
func (r *RequestLog) AssertJSONBody(t testing.TB, expected any) {
	t.Helper()

	var raw []byte
	switch v := expected.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			t.Errorf("failed to marshal expected value: %v", err)
			return
		}
		raw = data
	}

	var expectedJSON, actualJSON any
	if err := json.Unmarshal(raw, &expectedJSON); err != nil {
		t.Errorf("failed to parse expected JSON: %v", err)
		return
	}
	if err := json.Unmarshal([]byte(r.Body), &actualJSON); err != nil {
		t.Errorf("request body is not valid JSON: %v\nbody: %s", err, r.Body)
		return
	}
	if !reflect.DeepEqual(actualJSON, expectedJSON) {
		t.Errorf("request body does not match expected JSON\nexpected: %s\nactual: %s", raw, r.Body)
	}
}

// AssertQueryParam asserts that the query carried key with the expected value.
func (r *RequestLog) AssertQueryParam(t testing.TB, key, expected string) {
	t.Helper()

	values, err := url.ParseQuery(r.QueryString)
	if err != nil {
		t.Errorf("malformed query %q: %v", r.QueryString, err)
		return
	}
	if !values.Has(key) {
		t.Errorf("request does not have query parameter %q", key)
		return
	}
	if actual := values.Get(key); actual != expected {
		t.Errorf("query parameter %q value mismatch\nexpected: %q\nactual: %q", key, expected, actual)
	}
}

// AssertParameter asserts that the form body carried name with the
// expected value.
func (r *RequestLog) AssertParameter(t testing.TB, name, expected string) {
	t.Helper()

	actual, ok := r.Parameters[name]
	if !ok {
		t.Errorf("request does not have form parameter %q", name)
		return
	}
	if actual != expected {
		t.Errorf("form parameter %q value mismatch\nexpected: %q\nactual: %q", name, expected, actual)
	}
}

const schemaURL = "mem://localtest/schema.json"

// AssertJSONSchema asserts that the body is JSON valid against schema, a
// JSON Schema document (draft 2020-12 unless it declares $schema).
func (r *RequestLog) AssertJSONSchema(t testing.TB, schema string) {
	t.Helper()

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(schema)); err != nil {
		t.Errorf("invalid JSON schema: %v", err)
		return
	}
	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		t.Errorf("invalid JSON schema: %v", err)
		return
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(r.Body)))
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		t.Errorf("request body is not valid JSON: %v\nbody: %s", err, r.Body)
		return
	}
	if err := compiled.Validate(body); err != nil {
		t.Errorf("request body does not match schema: %v\nbody: %s", err, r.Body)
	}
}

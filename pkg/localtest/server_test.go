package localtest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raphcal/localserver/pkg/client"
	"github.com/Raphcal/localserver/pkg/localserver"
	"github.com/Raphcal/localserver/pkg/message"
)

// recorder captures assertion failures instead of failing the test.
type recorder struct {
	testing.TB
	errors []string
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func get(t *testing.T, addr, target string) *message.Response {
	t.Helper()
	resp, err := client.Get(context.Background(), addr, target)
	require.NoError(t, err)
	return resp
}

// ============================================================================
// Routes
// ============================================================================

func TestServer_Routes(t *testing.T) {
	t.Parallel()

	srv := New(t, localserver.WithImplementation(localserver.ImplementationLocal))
	srv.Handle("GET", "/hello").
		WithStatus(201).
		WithHeader("X-Test", "yes").
		WithBody("hello there").
		Reply()
	srv.Handle("GET", "/teapot").
		WithStatus(418).
		WithStatusMessage("SHORT AND STOUT").
		Reply()

	addr := srv.Start()
	require.NotEmpty(t, addr)
	assert.Equal(t, addr, srv.Start(), "second Start returns the running server")
	assert.Equal(t, "http://"+addr, srv.URL())
	assert.Equal(t, localserver.ImplementationLocal, srv.LocalServer().Implementation())

	resp := get(t, addr, "/hello")
	assert.Equal(t, 201, resp.StatusCode())
	assert.Equal(t, "CREATED", resp.StatusMessage())
	assert.Equal(t, "yes", resp.Header("X-Test"))
	assert.Equal(t, "hello there", resp.Content())

	resp = get(t, addr, "/teapot")
	assert.Equal(t, 418, resp.StatusCode())
	assert.Equal(t, "SHORT AND STOUT", resp.StatusMessage())

	srv.AssertCalled(t, "GET", "/hello")
	srv.AssertCalledTimes(t, "get", "/teapot", 1)
	srv.AssertNotCalled(t, "POST", "/hello")
}

func TestServer_Unmatched(t *testing.T) {
	t.Parallel()

	srv := New(t)
	addr := srv.Start()

	resp := get(t, addr, "/nowhere?x=1")
	assert.Equal(t, 404, resp.StatusCode())
	assert.Equal(t, "no route for GET /nowhere", resp.Content())

	last, ok := srv.LastRequest()
	require.True(t, ok)
	assert.Empty(t, last.Route)
	assert.Equal(t, "/nowhere?x=1", last.Target)
	last.AssertQueryParam(t, "x", "1")
	srv.AssertCalled(t, "GET", "/nowhere")
}

func TestServer_PathParameters(t *testing.T) {
	t.Parallel()

	srv := New(t)
	srv.Handle("GET", "/users/{id}").WithBody("user").Reply()
	addr := srv.Start()

	assert.Equal(t, "user", get(t, addr, "/users/1").Content())
	assert.Equal(t, "user", get(t, addr, "/users/abc").Content())
	assert.Equal(t, 404, get(t, addr, "/users/1/posts").StatusCode())

	srv.AssertCalledTimes(t, "GET", "/users/{id}", 2)
	srv.AssertCalledTimes(t, "GET", "/users/1", 1)

	requests := srv.Requests()
	require.Len(t, requests, 3)
	assert.Equal(t, "GET /users/{id}", requests[0].Route)
	requests[1].AssertPath(t, "/users/abc")
}

func TestServer_Times(t *testing.T) {
	t.Parallel()

	srv := New(t)
	srv.Handle("GET", "/once").WithBody("first").Times(1).Reply()
	srv.Handle("GET", "/once").WithBody("fallback").Reply()
	srv.Handle("GET", "/never").WithBody("unused").Times(0).Reply()
	addr := srv.Start()

	assert.Equal(t, "first", get(t, addr, "/once").Content())
	assert.Equal(t, "fallback", get(t, addr, "/once").Content())
	assert.Equal(t, "fallback", get(t, addr, "/once").Content())
	assert.Equal(t, 404, get(t, addr, "/never").StatusCode())
}

func TestServer_JSON(t *testing.T) {
	t.Parallel()

	srv := New(t)
	srv.Handle("GET", "/json").WithJSON(map[string]int{"n": 1}).Reply()
	srv.Handle("GET", "/auto").WithBody([]string{"a", "b"}).Reply()
	addr := srv.Start()

	resp := get(t, addr, "/json")
	assert.Equal(t, "application/json", resp.ContentType())
	assert.JSONEq(t, `{"n":1}`, resp.Content())

	resp = get(t, addr, "/auto")
	assert.Equal(t, "application/json", resp.ContentType())
	assert.JSONEq(t, `["a","b"]`, resp.Content())
}

func TestServer_RecordsRequests(t *testing.T) {
	t.Parallel()

	srv := New(t)
	srv.Handle("POST", "/form").WithStatus(200).Reply()
	srv.Handle("PUT", "/json").Reply()
	addr := srv.Start()

	req := client.NewRequest("POST", addr, "/form?source=test")
	req.SetHeader("Content-Type", "application/x-www-form-urlencoded")
	req.SetContent("name=Ada&lang=go")
	_, err := client.Do(context.Background(), addr, req)
	require.NoError(t, err)

	req = client.NewRequest("PUT", addr, "/json")
	req.SetHeader("Content-Type", "application/json")
	req.SetContent(`{"id": 7, "tags": ["x"]}`)
	_, err = client.Do(context.Background(), addr, req)
	require.NoError(t, err)

	requests := srv.Requests()
	require.Len(t, requests, 2)

	form := requests[0]
	form.AssertMethod(t, "post")
	form.AssertPath(t, "/form")
	form.AssertQueryParam(t, "source", "test")
	form.AssertHeader(t, "content-type", "application/x-www-form-urlencoded; charset=US-ASCII")
	form.AssertHeader(t, "User-Agent", client.DefaultUserAgent)
	form.AssertBody(t, "name=Ada&lang=go")
	form.AssertParameter(t, "name", "Ada")
	form.AssertParameter(t, "lang", "go")

	body := requests[1]
	body.AssertBodyContains(t, `"id": 7`)
	body.AssertJSONBody(t, map[string]any{"id": 7, "tags": []string{"x"}})
	body.AssertJSONBody(t, `{"tags":["x"],"id":7}`)
}

func TestServer_Reset(t *testing.T) {
	t.Parallel()

	srv := New(t)
	srv.Handle("GET", "/gone").Reply()
	addr := srv.Start()

	assert.Equal(t, 200, get(t, addr, "/gone").StatusCode())
	srv.Reset()
	assert.Empty(t, srv.Requests())
	assert.Equal(t, 404, get(t, addr, "/gone").StatusCode())
}

func TestServer_Stop(t *testing.T) {
	t.Parallel()

	srv := New(t)
	assert.Empty(t, srv.Addr())
	assert.Empty(t, srv.URL())
	srv.Stop()

	require.NotEmpty(t, srv.Start())
	srv.Stop()
	srv.Stop()

	assert.Nil(t, srv.LocalServer().Endpoint())
	assert.Empty(t, srv.Addr())
}

// ============================================================================
// Builder and assertions
// ============================================================================

func TestRouteBuilder_Error(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	srv := New(rec)
	b := srv.Handle("GET", "/bad").WithJSON(make(chan int))
	require.Error(t, b.Err())

	b.Reply()
	require.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0], "GET /bad")
	assert.Empty(t, srv.routes)
}

func TestAssertions_Failures(t *testing.T) {
	t.Parallel()

	srv := New(t)
	srv.Handle("GET", "/x").Reply()
	addr := srv.Start()
	get(t, addr, "/x?a=1")

	rec := &recorder{}
	srv.AssertCalled(rec, "GET", "/y")
	srv.AssertCalledTimes(rec, "GET", "/x", 3)
	srv.AssertNotCalled(rec, "GET", "/x")

	last, _ := srv.LastRequest()
	last.AssertMethod(rec, "POST")
	last.AssertPath(rec, "/z")
	last.AssertHeader(rec, "X-Missing", "v")
	last.AssertBody(rec, "something")
	last.AssertBodyContains(rec, "else")
	last.AssertJSONBody(rec, `{}`)
	last.AssertQueryParam(rec, "a", "2")
	last.AssertQueryParam(rec, "b", "1")
	last.AssertParameter(rec, "p", "v")

	assert.Len(t, rec.errors, 12)
	assert.True(t, strings.HasPrefix(rec.errors[0], "expected GET /y to be called"))
}

func TestMatchesPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		actual, expected string
		want             bool
	}{
		{"/a", "/a", true},
		{"/a", "/b", false},
		{"/users/9", "/users/{id}", true},
		{"/users/9/x", "/users/{id}", false},
		{"/users", "/users/{id}", false},
		{"/a/b/c", "/a/{x}/c", true},
	}
	for _, tt := range tests {
		t.Run(tt.actual+" "+tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesPath(tt.actual, tt.expected))
		})
	}
}

// ============================================================================
// Conditions and schemas
// ============================================================================

func TestServer_When(t *testing.T) {
	t.Parallel()

	srv := New(t)
	srv.Handle("POST", "/login").
		When(`params.user == "ada" && Header("x-token") == "s3cret"`).
		WithBody("welcome").
		Reply()
	srv.Handle("POST", "/login").WithStatus(403).WithBody("denied").Reply()
	srv.Handle("GET", "/search").
		When(`query.q startsWith "go"`).
		WithBody("gophers").
		Reply()
	addr := srv.Start()

	login := func(user, token string) *message.Response {
		req := client.NewRequest("POST", addr, "/login")
		req.SetHeader("X-Token", token)
		req.SetHeader("Content-Type", "application/x-www-form-urlencoded")
		req.SetContent("user=" + user)
		resp, err := client.Do(context.Background(), addr, req)
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, "welcome", login("ada", "s3cret").Content())
	assert.Equal(t, "denied", login("ada", "wrong").Content())
	assert.Equal(t, "denied", login("bob", "s3cret").Content())

	assert.Equal(t, "gophers", get(t, addr, "/search?q=golang").Content())
	assert.Equal(t, 404, get(t, addr, "/search?q=rust").StatusCode())
	assert.Equal(t, 404, get(t, addr, "/search").StatusCode())
}

func TestRouteBuilder_InvalidCondition(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	srv := New(rec)
	b := srv.Handle("GET", "/x").When(`method ==`)
	require.Error(t, b.Err())

	b = srv.Handle("GET", "/y").When(`len(path)`)
	assert.Error(t, b.Err(), "non-boolean expressions are rejected")
}

func TestRequestLog_AssertJSONSchema(t *testing.T) {
	t.Parallel()

	const schema = `{
		"type": "object",
		"required": ["id", "tags"],
		"properties": {
			"id": {"type": "integer", "minimum": 1},
			"tags": {"type": "array", "items": {"type": "string"}}
		}
	}`

	valid := RequestLog{Body: `{"id": 7, "tags": ["x"]}`}
	valid.AssertJSONSchema(t, schema)

	rec := &recorder{}
	(&RequestLog{Body: `{"id": 0, "tags": [1]}`}).AssertJSONSchema(rec, schema)
	(&RequestLog{Body: `{"tags": []}`}).AssertJSONSchema(rec, schema)
	(&RequestLog{Body: `not json`}).AssertJSONSchema(rec, schema)
	valid.AssertJSONSchema(rec, `{"type": `)
	require.Len(t, rec.errors, 4)
	assert.Contains(t, rec.errors[0], "does not match schema")
	assert.Contains(t, rec.errors[2], "not valid JSON")
	assert.Contains(t, rec.errors[3], "invalid JSON schema")
}

package localtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/expr-lang/expr/vm"

	"github.com/Raphcal/localserver/pkg/message"
)

type route struct {
	method        string
	path          string
	statusCode    int
	statusMessage string
	headers       [][2]string
	body          []byte
	limited       bool
	remaining     int
	condition     *vm.Program
}

func (r *route) write(resp *message.Response) {
	resp.SetStatus(r.statusCode, r.statusMessage)
	for _, h := range r.headers {
		resp.SetHeader(h[0], h[1])
	}
	resp.SetContentBytes(r.body, true)
}

// RouteBuilder declares a route with a fluent API. Nothing is served until
// Reply is called.
type RouteBuilder struct {
	server *Server
	route  *route
	err    error
}

func (b *RouteBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns the first error met while building.
func (b *RouteBuilder) Err() error {
	return b.err
}

// WithStatus sets the status code and its upper-case reason phrase.
func (b *RouteBuilder) WithStatus(code int) *RouteBuilder {
	b.route.statusCode = code
	b.route.statusMessage = strings.ToUpper(http.StatusText(code))
	return b
}

// WithStatusMessage overrides the reason phrase.
func (b *RouteBuilder) WithStatusMessage(msg string) *RouteBuilder {
	b.route.statusMessage = msg
	return b
}

// WithHeader adds a response header. Content-Type also selects the charset
// the body is sent in.
func (b *RouteBuilder) WithHeader(name, value string) *RouteBuilder {
	b.route.headers = append(b.route.headers, [2]string{name, value})
	return b
}

// WithBody sets the response body. Values other than string and []byte are
// JSON encoded.
func (b *RouteBuilder) WithBody(body any) *RouteBuilder {
	switch v := body.(type) {
	case string:
		b.route.body = []byte(v)
	case []byte:
		b.route.body = v
	default:
		return b.WithJSON(v)
	}
	return b
}

// WithJSON JSON encodes body and sets Content-Type to application/json.
func (b *RouteBuilder) WithJSON(body any) *RouteBuilder {
	data, err := json.Marshal(body)
	if err != nil {
		b.setError(fmt.Errorf("WithJSON: failed to marshal body: %w", err))
		data = nil
	}
	b.route.body = data
	return b.WithHeader(message.HeaderContentType, "application/json")
}

// When restricts the route to requests for which expression is true.
// The expression sees method, path, target, body, headers, query and
// params, and can call Header(name) for a case-insensitive lookup and
// JSONPath(path) for the first value selected in a JSON body:
//
//	srv.Handle("POST", "/login").
//	    When(`params.user == "ada" && Header("X-Token") != ""`).
//	    Reply()
//	srv.Handle("POST", "/orders").
//	    When(`JSONPath("$.total") > 100`).
//	    WithStatus(402).
//	    Reply()
func (b *RouteBuilder) When(expression string) *RouteBuilder {
	program, err := compileCondition(expression)
	if err != nil {
		b.setError(err)
		return b
	}
	b.route.condition = program
	return b
}

// Times limits the route to n uses. Later requests fall through to the
// next matching route or to 404.
func (b *RouteBuilder) Times(n int) *RouteBuilder {
	b.route.limited = true
	b.route.remaining = max(n, 0)
	return b
}

// Reply registers the route. A build error fails the test.
func (b *RouteBuilder) Reply() {
	b.server.t.Helper()

	if b.err != nil {
		b.server.t.Errorf("route %s %s: %v", b.route.method, b.route.path, b.err)
		return
	}
	b.server.addRoute(b.route)
}

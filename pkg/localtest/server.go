package localtest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Raphcal/localserver/pkg/localserver"
	"github.com/Raphcal/localserver/pkg/message"
)

// Server is a scripted local server bound to a test.
type Server struct {
	t    testing.TB
	opts []localserver.Option
	srv  *localserver.LocalServer

	// ready turns true once Start returns; requests before that are the
	// startup probe and are neither matched nor recorded.
	ready atomic.Bool

	mu       sync.Mutex
	routes   []*route
	requests []RequestLog
}

// New creates a server for t. Options are passed to
// localserver.StartOnRandomPort.
func New(t testing.TB, opts ...localserver.Option) *Server {
	t.Helper()
	return &Server{t: t, opts: opts}
}

// Start starts the server on a random port and returns its host:port.
// The server is stopped when the test completes.
func (s *Server) Start() string {
	s.t.Helper()

	if s.srv != nil {
		return s.srv.Addr()
	}
	srv, err := localserver.StartOnRandomPort(context.Background(), s, s.opts...)
	if err != nil {
		s.t.Fatalf("failed to start local server: %v", err)
		return ""
	}
	s.srv = srv
	s.ready.Store(true)
	s.t.Cleanup(s.Stop)
	return srv.Addr()
}

// Stop stops the server. It is safe to call more than once.
func (s *Server) Stop() {
	if s.srv == nil {
		return
	}
	if err := s.srv.Stop(); err != nil {
		s.t.Errorf("stopping local server: %v", err)
	}
}

// Addr returns the host:port of the running server, "" before Start.
func (s *Server) Addr() string {
	if s.srv == nil {
		return ""
	}
	return s.srv.Addr()
}

// URL returns the http:// base URL of the running server.
func (s *Server) URL() string {
	if addr := s.Addr(); addr != "" {
		return "http://" + addr
	}
	return ""
}

// LocalServer returns the underlying server, nil before Start.
func (s *Server) LocalServer() *localserver.LocalServer {
	return s.srv
}

// Handle starts the declaration of a route. The path may contain {name}
// segments matching any single segment.
func (s *Server) Handle(method, path string) *RouteBuilder {
	return &RouteBuilder{
		server: s,
		route: &route{
			method:        method,
			path:          path,
			statusCode:    message.StatusOK,
			statusMessage: message.StatusMessageOK,
		},
	}
}

// Reset drops every route and recorded request.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = nil
	s.requests = nil
}

// Requests returns the recorded requests, oldest first.
func (s *Server) Requests() []RequestLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RequestLog, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request, false when none was made.
func (s *Server) LastRequest() (RequestLog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RequestLog{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) addRoute(r *route) {
	s.mu.Lock()
	s.routes = append(s.routes, r)
	s.mu.Unlock()
}

// HandleRequest implements servlet.Handler.
func (s *Server) HandleRequest(req *message.Request, resp *message.Response) error {
	if !s.ready.Load() {
		return nil
	}

	entry := newRequestLog(req)

	s.mu.Lock()
	matched := s.match(&entry)
	if matched != nil {
		entry.Route = matched.method + " " + matched.path
	}
	s.requests = append(s.requests, entry)
	s.mu.Unlock()

	if matched == nil {
		resp.SetStatus(message.StatusNotFound, message.StatusMessageNotFound)
		resp.SetContent(fmt.Sprintf("no route for %s %s", entry.Method, entry.Path))
		return nil
	}
	matched.write(resp)
	return nil
}

// match returns the first route accepting entry and consumes one of its
// uses. s.mu must be held.
func (s *Server) match(entry *RequestLog) *route {
	for _, r := range s.routes {
		if r.remaining == 0 && r.limited {
			continue
		}
		if !strings.EqualFold(r.method, entry.Method) || !matchesPath(entry.Path, r.path) {
			continue
		}
		if r.condition != nil && !evalCondition(r.condition, entry) {
			continue
		}
		if r.limited {
			r.remaining--
		}
		return r
	}
	return nil
}

func newRequestLog(req *message.Request) RequestLog {
	target := req.Target()
	if strings.Contains(target, "://") {
		if u, err := url.Parse(target); err == nil {
			target = u.RequestURI()
		}
	}
	path, query, _ := strings.Cut(target, "?")

	params, err := req.Parameters()
	if err != nil {
		params = nil
	}
	return RequestLog{
		Method:      req.Method(),
		Target:      req.Target(),
		Path:        path,
		QueryString: query,
		Headers:     req.HeaderMap(),
		Body:        req.Content(),
		Parameters:  params,
	}
}

// AssertCalled asserts that an endpoint was called at least once.
func (s *Server) AssertCalled(t testing.TB, method, path string) {
	t.Helper()

	if s.countCalls(method, path) == 0 {
		t.Errorf("expected %s %s to be called, but it was not called", method, path)
	}
}

// AssertCalledTimes asserts that an endpoint was called exactly n times.
func (s *Server) AssertCalledTimes(t testing.TB, method, path string, times int) {
	t.Helper()

	if count := s.countCalls(method, path); count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, path, times, count)
	}
}

// AssertNotCalled asserts that an endpoint was not called.
func (s *Server) AssertNotCalled(t testing.TB, method, path string) {
	t.Helper()

	if count := s.countCalls(method, path); count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, path, count)
	}
}

func (s *Server) countCalls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, r := range s.requests {
		if strings.EqualFold(r.Method, method) && matchesPath(r.Path, path) {
			count++
		}
	}
	return count
}

// matchesPath reports whether actual matches expected, where {name}
// segments of expected match any single segment.
func matchesPath(actual, expected string) bool {
	if actual == expected {
		return true
	}

	actualParts := strings.Split(actual, "/")
	expectedParts := strings.Split(expected, "/")
	if len(actualParts) != len(expectedParts) {
		return false
	}
	for i, exp := range expectedParts {
		if strings.HasPrefix(exp, "{") && strings.HasSuffix(exp, "}") {
			continue
		}
		if exp != actualParts[i] {
			return false
		}
	}
	return true
}

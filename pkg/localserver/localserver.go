package localserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"strconv"
	"time"

	"github.com/Raphcal/localserver/pkg/client"
	"github.com/Raphcal/localserver/pkg/engine"
	"github.com/Raphcal/localserver/pkg/logging"
	"github.com/Raphcal/localserver/pkg/message"
	"github.com/Raphcal/localserver/pkg/servlet"
)

// Random port range used by StartOnRandomPort.
const (
	RandomPortBase  = 10000
	RandomPortRange = 8000
)

// DefaultRetries is the number of servers StartOnRandomPort tries.
const DefaultRetries = 5

var (
	// ErrNoServerStarted is returned by StartOnRandomPort when every
	// attempt failed.
	ErrNoServerStarted = errors.New("no server could be started")

	// ErrUnknownImplementation is returned for an implementation name or
	// value outside Implementations.
	ErrUnknownImplementation = errors.New("unknown server implementation")
)

type settings struct {
	log            *slog.Logger
	host           string
	pollTimeout    time.Duration
	implementation Implementation
	fixedImpl      bool
	retries        int
	probeTimeout   time.Duration
	maxConnections int
}

// Option configures a LocalServer.
type Option func(*settings)

// WithLogger sets the logger passed to the implementation.
func WithLogger(log *slog.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHost sets the address to bind.
func WithHost(host string) Option {
	return func(s *settings) {
		s.host = host
	}
}

// WithPollTimeout sets the readiness wait bound of the native engine. The
// default is engine.BoundedPollTimeout so Stop, including the stop of a
// candidate rejected by StartOnRandomPort, returns without socket activity.
// A negative value keeps the engine's unbounded wait.
func WithPollTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.pollTimeout = d
	}
}

// WithImplementation selects the server variant. Without it New uses
// ImplementationLocal and StartOnRandomPort alternates between variants.
func WithImplementation(impl Implementation) Option {
	return func(s *settings) {
		s.implementation = impl
		s.fixedImpl = true
	}
}

// WithRetries sets how many servers StartOnRandomPort tries.
func WithRetries(n int) Option {
	return func(s *settings) {
		s.retries = n
	}
}

// WithProbeTimeout bounds the `GET /` check of StartOnRandomPort.
func WithProbeTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.probeTimeout = d
	}
}

// WithMaxConnections caps concurrent connections on the host
// implementation. The native engine serves one connection per readiness
// event and ignores it.
func WithMaxConnections(n int) Option {
	return func(s *settings) {
		s.maxConnections = n
	}
}

func newSettings(opts []Option) *settings {
	st := &settings{
		log:          logging.Nop(),
		pollTimeout:  engine.BoundedPollTimeout,
		retries:      DefaultRetries,
		probeTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// LocalServer is a server bound to one handler.
type LocalServer struct {
	handler        servlet.Handler
	implementation Implementation
	thread         ServerThread
}

// New creates a server on port. Nothing is bound until Start.
func New(port int, handler servlet.Handler, opts ...Option) (*LocalServer, error) {
	st := newSettings(opts)
	return newServer(port, handler, st.implementation, st)
}

func newServer(port int, handler servlet.Handler, impl Implementation, st *settings) (*LocalServer, error) {
	thread, err := impl.create(port, handler, st)
	if err != nil {
		return nil, err
	}
	return &LocalServer{
		handler:        handler,
		implementation: impl,
		thread:         thread,
	}, nil
}

// Start binds the server. It returns once requests can be accepted.
func (s *LocalServer) Start() error {
	return s.thread.Start()
}

// Stop stops the server and waits for it to release its socket.
func (s *LocalServer) Stop() error {
	return s.thread.Stop()
}

// StopAfter stops the server after d. Only the first call has an effect.
func (s *LocalServer) StopAfter(d time.Duration) {
	s.thread.StopAfter(d)
}

// Endpoint returns the bound address, nil when not listening.
func (s *LocalServer) Endpoint() *net.TCPAddr {
	return s.thread.Endpoint()
}

// Addr returns a dialable host:port for the endpoint, mapping a wildcard
// bind address to loopback. It is empty before Start.
func (s *LocalServer) Addr() string {
	endpoint := s.Endpoint()
	if endpoint == nil {
		return ""
	}
	return dialAddr(endpoint)
}

// Handler returns the handler given to New.
func (s *LocalServer) Handler() servlet.Handler {
	return s.handler
}

// Implementation returns the variant serving requests.
func (s *LocalServer) Implementation() Implementation {
	return s.implementation
}

// StartOnRandomPort starts servers on random ports until one answers
// `GET /` with 200, trying at most WithRetries times.
func StartOnRandomPort(ctx context.Context, handler servlet.Handler, opts ...Option) (*LocalServer, error) {
	st := newSettings(opts)

	var errs []error
	for retry := range st.retries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		port := RandomPortBase + rand.IntN(RandomPortRange)
		impl := implementationFor(retry, st)
		srv, err := newServer(port, handler, impl, st)
		if err != nil {
			return nil, err
		}
		if err := srv.Start(); err != nil {
			st.log.Debug("server did not start", "port", port, "implementation", impl.String(), "error", err)
			errs = append(errs, err)
			continue
		}

		if err := probe(ctx, srv.Endpoint(), st.probeTimeout); err != nil {
			st.log.Debug("server did not answer", "endpoint", srv.Endpoint().String(), "implementation", impl.String(), "error", err)
			errs = append(errs, err)
			_ = srv.Stop()
			continue
		}
		return srv, nil
	}
	errs = append([]error{fmt.Errorf("%w after %d attempts", ErrNoServerStarted, st.retries)}, errs...)
	return nil, errors.Join(errs...)
}

func implementationFor(retry int, st *settings) Implementation {
	if st.fixedImpl {
		return st.implementation
	}
	return Implementations[retry%len(Implementations)]
}

func probe(ctx context.Context, endpoint *net.TCPAddr, timeout time.Duration) error {
	if endpoint == nil {
		return errors.New("server has no endpoint")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := client.Get(ctx, dialAddr(endpoint), "/")
	if err != nil {
		return err
	}
	if resp.StatusCode() != message.StatusOK {
		return fmt.Errorf("probe answered %d %s", resp.StatusCode(), resp.StatusMessage())
	}
	return nil
}

// dialAddr maps a wildcard bind address to the loopback address.
func dialAddr(endpoint *net.TCPAddr) string {
	ip := endpoint.IP
	switch {
	case ip == nil || (ip.IsUnspecified() && ip.To4() != nil):
		ip = net.IPv4(127, 0, 0, 1)
	case ip.IsUnspecified():
		ip = net.IPv6loopback
	}
	return net.JoinHostPort(ip.String(), strconv.Itoa(endpoint.Port))
}

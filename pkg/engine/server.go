package engine

import (
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Raphcal/localserver/pkg/logging"
	"github.com/Raphcal/localserver/pkg/message"
	"github.com/Raphcal/localserver/pkg/servlet"
)

// Poll timeouts. New waits for socket activity without a bound, so Stop
// only completes once a connection event wakes the loop. Callers that need
// a prompt Stop opt into BoundedPollTimeout with WithPollTimeout.
const (
	DefaultPollTimeout time.Duration = -1
	BoundedPollTimeout               = 250 * time.Millisecond
)

// Server is the native HTTP server.
type Server struct {
	port        int
	host        string
	handler     servlet.Handler
	pollTimeout time.Duration
	log         *slog.Logger
	newPoller   func() (poller, error)

	mu        sync.Mutex
	running   bool
	exited    chan struct{}
	startTime time.Time
	bound     string

	// runMu is held by the loop goroutine for its whole run.
	runMu       sync.Mutex
	interrupted atomic.Bool
	endpoint    atomic.Pointer[net.TCPAddr]
	stopArmed   atomic.Bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHost sets the address to bind. The default, "", binds every
// interface.
func WithHost(host string) Option {
	return func(s *Server) {
		s.host = host
	}
}

// WithPollTimeout bounds each readiness wait. A negative value waits until
// socket activity, so Stop only completes once a connection event arrives.
func WithPollTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.pollTimeout = d
	}
}

// New creates a server for handler. Port 0 lets the system choose.
func New(port int, handler servlet.Handler, opts ...Option) *Server {
	s := &Server{
		port:        port,
		handler:     handler,
		pollTimeout: DefaultPollTimeout,
		log:         logging.Nop(),
		newPoller:   newPoller,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.handler == nil {
		s.handler = servlet.HandlerFunc(func(*message.Request, *message.Response) error { return nil })
	}
	return s
}

// Start binds the listening socket and starts the loop goroutine. It returns
// once the socket is registered for accept, or with the error that
// prevented it.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alive() {
		return ErrAlreadyStarted
	}

	s.interrupted.Store(false)
	ready := make(chan error, 1)
	exited := make(chan struct{})
	go s.run(ready, exited)
	if err := <-ready; err != nil {
		return err
	}

	s.running = true
	s.exited = exited
	s.startTime = time.Now()
	s.bound = s.Endpoint().String()
	s.log.Info("server started", "endpoint", s.bound)
	return nil
}

// Stop interrupts the loop and waits until it has released every socket.
// Calling Stop on a stopped server does nothing.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	if !s.alive() {
		// The loop already ended on its own.
		s.running = false
		return nil
	}

	s.interrupted.Store(true)
	s.runMu.Lock()
	//nolint:staticcheck // SA2001: the lock only waits for the loop to exit
	s.runMu.Unlock()

	s.running = false
	s.log.Info("server stopped", "endpoint", s.bound, "uptime", time.Since(s.startTime).Round(time.Millisecond))
	return nil
}

// StopAfter stops the server once d has elapsed. Only the first call
// schedules a stop; later calls are ignored.
func (s *Server) StopAfter(d time.Duration) {
	if !s.stopArmed.CompareAndSwap(false, true) {
		return
	}
	time.AfterFunc(d, func() {
		_ = s.Stop()
	})
}

// Endpoint returns the bound address, or nil before binding and after the
// loop has exited.
func (s *Server) Endpoint() *net.TCPAddr {
	return s.endpoint.Load()
}

// IsRunning reports whether the loop is serving: Start succeeded, Stop has
// not been called and no fatal error ended the loop.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive()
}

// alive must be called with mu held.
func (s *Server) alive() bool {
	if !s.running {
		return false
	}
	select {
	case <-s.exited:
		return false
	default:
		return true
	}
}

// Uptime returns the time since Start, zero when stopped.
func (s *Server) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive() {
		return 0
	}
	return time.Since(s.startTime)
}

package hostserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Raphcal/localserver/pkg/engine"
	"github.com/Raphcal/localserver/pkg/logging"
	"github.com/Raphcal/localserver/pkg/message"
	"github.com/Raphcal/localserver/pkg/servlet"
	"golang.org/x/net/netutil"
)

const maxPort = 65535

// Start errors are shared with the native engine so callers can match
// either variant with errors.Is.
var (
	ErrBindFailure    = engine.ErrBindFailure
	ErrAlreadyStarted = engine.ErrAlreadyStarted
)

// ShutdownTimeout bounds how long Stop waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Server adapts a servlet.Handler to net/http.
type Server struct {
	port    int
	host    string
	handler servlet.Handler
	log     *slog.Logger
	maxConn int

	mu         sync.Mutex
	httpServer *http.Server
	done       chan struct{}
	startTime  time.Time

	endpoint  atomic.Pointer[net.TCPAddr]
	stopArmed atomic.Bool
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

// WithMaxConnections caps the number of simultaneously accepted
// connections. Zero or less means no cap.
func WithMaxConnections(n int) Option {
	return func(s *Server) {
		s.maxConn = n
	}
}

// New creates a server for handler. Port 0 lets the system choose.
func New(port int, handler servlet.Handler, opts ...Option) *Server {
	s := &Server{
		port:    port,
		handler: handler,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return ErrAlreadyStarted
	}

	ln, err := s.listen()
	if err != nil {
		return err
	}
	if s.maxConn > 0 {
		ln = netutil.LimitListener(ln, s.maxConn)
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelDebug),
	}
	srv.SetKeepAlivesEnabled(false)

	done := make(chan struct{})
	addr, _ := ln.Addr().(*net.TCPAddr)
	s.endpoint.Store(addr)
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("host server terminated", "endpoint", addr.String(), "error", err)
		}
		s.endpoint.Store(nil)
	}()

	s.httpServer = srv
	s.done = done
	s.startTime = time.Now()
	s.log.Info("server started", "endpoint", addr.String(), "implementation", "host")
	return nil
}

func (s *Server) listen() (net.Listener, error) {
	port := s.port
	for {
		ln, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(port)))
		if err == nil {
			return ln, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) || port == 0 {
			return nil, fmt.Errorf("binding port %d: %w", port, err)
		}
		if port >= maxPort {
			return nil, fmt.Errorf("%w: last tried %d", ErrBindFailure, port)
		}
		s.log.Debug("port in use, trying next", "port", port)
		port++
	}
}

// Stop closes the listener, waits up to ShutdownTimeout for in-flight
// requests and returns once the server has exited.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		err = errors.Join(err, s.httpServer.Close())
	}
	<-s.done

	s.endpoint.Store(nil)
	s.httpServer = nil
	s.log.Info("server stopped", "uptime", time.Since(s.startTime).Round(time.Millisecond))
	if err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// StopAfter stops the server once d has elapsed. Only the first call
// schedules a stop; later calls are ignored.
func (s *Server) StopAfter(d time.Duration) {
	if !s.stopArmed.CompareAndSwap(false, true) {
		return
	}
	s.log.Info("server will stop", "in", d)
	time.AfterFunc(d, func() {
		_ = s.Stop()
	})
}

// Endpoint returns the bound address, or nil when not serving.
func (s *Server) Endpoint() *net.TCPAddr {
	return s.endpoint.Load()
}

// ServeHTTP runs the handler for one net/http request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := ToRequest(r)
	if err != nil {
		s.log.Debug("reading request body", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := message.NewResponse()
	resp.ConfigureDefaults(time.Now())
	if s.handler != nil {
		if err := servlet.Invoke(s.handler, req, resp); err != nil {
			s.log.Warn("handler failed",
				"method", req.Method(),
				"target", req.Target(),
				"error", err,
			)
		}
	}

	if err := WriteResponse(w, resp); err != nil {
		s.log.Debug("writing response", "error", err)
	}
}

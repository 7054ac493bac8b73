package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Raphcal/localserver/pkg/message"
	"github.com/Raphcal/localserver/pkg/parser"
	"github.com/Raphcal/localserver/pkg/servlet"
)

const readBufferSize = 1024

// connection is the state of one accepted socket. It is only touched by the
// loop goroutine.
type connection struct {
	fd       int
	id       string
	remote   string
	accepted time.Time

	buf      []byte
	parser   *parser.RequestParser
	response *message.Response

	writing bool
	out     []byte
}

func newConnection(fd int, remote string) *connection {
	return &connection{
		fd:       fd,
		id:       uuid.NewString(),
		remote:   remote,
		accepted: time.Now(),
		buf:      make([]byte, readBufferSize),
		parser:   parser.New(),
		response: message.NewResponse(),
	}
}

type loop struct {
	server   *Server
	log      *slog.Logger
	listener int
	poller   poller
	conns    map[int]*connection
	events   []event
}

// run owns the listening socket, the poller and every connection until the
// server is interrupted or a listener error occurs.
func (s *Server) run(ready chan<- error, exited chan<- struct{}) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	defer close(exited)

	lfd, addr, err := listen(s.host, s.port, s.log)
	if err != nil {
		ready <- err
		return
	}
	p, err := s.newPoller()
	if err != nil {
		_ = closeFD(lfd)
		ready <- fmt.Errorf("creating poller: %w", err)
		return
	}
	if err := p.add(lfd, false); err != nil {
		_ = p.close()
		_ = closeFD(lfd)
		ready <- fmt.Errorf("registering listener: %w", err)
		return
	}

	l := &loop{
		server:   s,
		log:      s.log.With("endpoint", addr.String()),
		listener: lfd,
		poller:   p,
		conns:    make(map[int]*connection),
		events:   make([]event, 0, 64),
	}
	s.endpoint.Store(addr)
	ready <- nil

	defer l.shutdown()
	if err := l.serve(); err != nil {
		l.log.Error("server loop terminated", "error", err)
	}
}

func (l *loop) serve() error {
	for !l.server.interrupted.Load() {
		events, err := l.poller.wait(l.events[:0], l.server.pollTimeout)
		if err != nil {
			return fmt.Errorf("waiting for readiness: %w", err)
		}
		l.events = events

		for _, ev := range events {
			if ev.fd == l.listener {
				if err := l.accept(); err != nil {
					return err
				}
				continue
			}
			c, ok := l.conns[ev.fd]
			if !ok {
				continue
			}
			if c.writing {
				l.write(c)
			} else {
				l.read(c)
			}
		}
	}
	return nil
}

func (l *loop) accept() error {
	for {
		fd, remote, err := acceptFD(l.listener)
		if err != nil {
			if isTemporary(err) {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}

		c := newConnection(fd, remote)
		if err := l.poller.add(fd, false); err != nil {
			l.log.Debug("failed to register connection", "conn", c.id, "error", err)
			_ = closeFD(fd)
			continue
		}
		l.conns[fd] = c
		l.log.Debug("connection accepted", "conn", c.id, "remote", remote)
	}
}

func (l *loop) read(c *connection) {
	n, err := readFD(c.fd, c.buf)
	switch {
	case err != nil && isTemporary(err):
		return
	case err != nil:
		l.log.Debug("read failed", "conn", c.id, "error", err)
		l.closeConn(c)
		return
	case n == 0:
		l.closeConn(c)
		return
	}

	c.parser.Feed(c.buf[:n])
	if c.parser.Ready() {
		l.respond(c)
	}
}

func (l *loop) respond(c *connection) {
	req := c.parser.Request()
	resp := c.response
	resp.ConfigureDefaults(time.Now())

	if err := servlet.Invoke(l.server.handler, req, resp); err != nil {
		l.log.Warn("handler failed",
			"conn", c.id,
			"method", req.Method(),
			"target", req.Target(),
			"error", err,
		)
	}

	c.out = resp.Bytes()
	c.writing = true
	if err := l.poller.modify(c.fd, true); err != nil {
		l.log.Debug("failed to watch for write", "conn", c.id, "error", err)
		l.closeConn(c)
	}
}

// write sends as much of the response as the socket accepts. The rest is
// sent on the next writable event.
func (l *loop) write(c *connection) {
	n, err := writeFD(c.fd, c.out)
	if err != nil {
		if isTemporary(err) {
			return
		}
		l.log.Debug("write failed", "conn", c.id, "error", err)
		l.closeConn(c)
		return
	}

	c.out = c.out[n:]
	if len(c.out) == 0 {
		l.log.Debug("response sent",
			"conn", c.id,
			"status", c.response.StatusCode(),
			"duration", time.Since(c.accepted),
		)
		l.closeConn(c)
	}
}

func (l *loop) closeConn(c *connection) {
	delete(l.conns, c.fd)
	_ = l.poller.remove(c.fd)
	if err := closeFD(c.fd); err != nil {
		l.log.Debug("close failed", "conn", c.id, "error", err)
	}
	l.log.Debug("connection closed", "conn", c.id)
}

func (l *loop) shutdown() {
	for _, c := range l.conns {
		l.closeConn(c)
	}
	if err := l.poller.close(); err != nil {
		l.log.Debug("closing poller", "error", err)
	}
	if err := closeFD(l.listener); err != nil {
		l.log.Debug("closing listener", "error", err)
	}
	l.server.endpoint.Store(nil)
}

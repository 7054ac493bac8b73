package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/Raphcal/localserver/pkg/logging"
	"github.com/Raphcal/localserver/pkg/message"
)

// DefaultTimeout bounds a whole exchange when the context has no deadline.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent is sent by Get.
const DefaultUserAgent = "localserver-client"

// ErrEmptyResponse is returned when the server closed the connection
// without sending anything.
var ErrEmptyResponse = errors.New("empty response")

// Client sends raw requests over TCP.
type Client struct {
	timeout time.Duration
	log     *slog.Logger
	dialer  net.Dialer
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each exchange when the context has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New returns a client.
func New(opts ...Option) *Client {
	c := &Client{
		timeout: DefaultTimeout,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultClient = New()

// Do sends req with a default client.
func Do(ctx context.Context, addr string, req *message.Request) (*message.Response, error) {
	return defaultClient.Do(ctx, addr, req)
}

// Get sends a GET for target with a default client.
func Get(ctx context.Context, addr, target string) (*message.Response, error) {
	return defaultClient.Get(ctx, addr, target)
}

// Do writes req to addr, reads until the server closes the connection and
// decodes what was received.
func (c *Client) Do(ctx context.Context, addr string, req *message.Request) (*message.Response, error) {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	start := time.Now()
	if _, err := req.WriteTo(conn); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	data, err := io.ReadAll(conn)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("reading response: %w", ctx.Err())
		}
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyResponse
	}

	resp, err := message.DecodeResponse(data)
	if err != nil {
		return nil, err
	}
	c.log.Debug("request completed",
		"addr", addr,
		"method", req.Method(),
		"target", req.Target(),
		"status", resp.StatusCode(),
		"duration", time.Since(start),
	)
	return resp, nil
}

// Get sends `GET target HTTP/1.1` with Host and User-Agent headers.
func (c *Client) Get(ctx context.Context, addr, target string) (*message.Response, error) {
	req := NewRequest(message.MethodGet, addr, target)
	return c.Do(ctx, addr, req)
}

// NewRequest returns a default request for method and target with the Host
// header set to addr.
func NewRequest(method, addr, target string) *message.Request {
	req := message.NewRequest()
	req.SetMethod(method)
	req.SetTarget(target)
	req.SetHeader(message.HeaderHost, addr)
	req.SetHeader(message.HeaderUserAgent, DefaultUserAgent)
	return req
}

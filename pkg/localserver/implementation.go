package localserver

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/Raphcal/localserver/pkg/engine"
	"github.com/Raphcal/localserver/pkg/hostserver"
	"github.com/Raphcal/localserver/pkg/servlet"
)

// ServerThread is the lifecycle shared by every implementation.
type ServerThread interface {
	Start() error
	Stop() error
	StopAfter(d time.Duration)
	Endpoint() *net.TCPAddr
}

// Implementation selects the server variant.
type Implementation int

const (
	// ImplementationLocal is the native readiness-loop engine.
	ImplementationLocal Implementation = iota
	// ImplementationHost delegates to net/http.
	ImplementationHost
)

// Implementations lists every variant, in the order StartOnRandomPort
// alternates through them.
var Implementations = []Implementation{ImplementationLocal, ImplementationHost}

func (i Implementation) String() string {
	switch i {
	case ImplementationLocal:
		return "local"
	case ImplementationHost:
		return "host"
	}
	return fmt.Sprintf("Implementation(%d)", int(i))
}

// ParseImplementation parses "local" or "host", ignoring case.
func ParseImplementation(s string) (Implementation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local", "":
		return ImplementationLocal, nil
	case "host":
		return ImplementationHost, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownImplementation, s)
}

func (i Implementation) create(port int, handler servlet.Handler, st *settings) (ServerThread, error) {
	switch i {
	case ImplementationLocal:
		return engine.New(port, handler,
			engine.WithLogger(st.log),
			engine.WithHost(st.host),
			engine.WithPollTimeout(st.pollTimeout),
		), nil
	case ImplementationHost:
		return hostserver.New(port, handler,
			hostserver.WithLogger(st.log),
			hostserver.WithHost(st.host),
			hostserver.WithMaxConnections(st.maxConnections),
		), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownImplementation, i)
}

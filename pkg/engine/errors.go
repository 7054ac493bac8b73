package engine

import "errors"

var (
	// ErrBindFailure is returned by Start when no port between the
	// requested one and 65535 could be bound.
	ErrBindFailure = errors.New("no port available to bind")

	// ErrAlreadyStarted is returned by Start on a running server.
	ErrAlreadyStarted = errors.New("server is already running")

	// ErrUnsupportedPlatform is returned by Start on systems without the
	// socket readiness primitives the engine relies on.
	ErrUnsupportedPlatform = errors.New("native engine is not supported on this platform")
)

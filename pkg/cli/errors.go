package cli

import "errors"

// Common CLI errors
var (
	ErrInvalidURL  = errors.New("invalid URL")
	ErrHTTPStatus  = errors.New("server answered with an error status")
	ErrInvalidFlag = errors.New("invalid flag value")
)

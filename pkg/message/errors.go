package message

import "errors"

// Decoding errors. Callers branch on them with errors.Is.
var (
	ErrMissingBoundary     = errors.New("multipart form without boundary")
	ErrMalformedParameter  = errors.New("malformed form parameter")
	ErrMalformedStatusLine = errors.New("malformed status line")
	ErrUnsupportedCharset  = errors.New("unsupported charset")
)

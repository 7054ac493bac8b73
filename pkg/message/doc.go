// Package message holds the HTTP/1.1 message model shared by requests and
// responses.
//
// A Message carries a protocol version, a header collection, a byte content
// buffer and the values derived from its Content-Type header (main type,
// charset and multipart boundary). Request adds the method, target and a
// lazily decoded form parameter map; Response adds the status line and can be
// decoded from a complete raw response with DecodeResponse.
//
// # Headers
//
// Header names keep the spelling they were last set with but are compared
// case-insensitively:
//
//	req.SetHeader("content-type", "text/plain")
//	req.Header("Content-Type") // "text/plain"
//
// Setting Content-Type re-derives ContentType, Charset and FormBoundary.
//
// # Content
//
// Text content is encoded with the message charset (UTF-8 when none is set).
// The refresh flag of the content setters rewrites Content-Length and
// Content-Type:
//
//	resp.SetContentString("ok", true)
//	resp.Bytes() // "HTTP/1.1 200 OK\r\n...Content-Length: 2\r\n\r\nok"
//
// # Forms
//
// Request.Parameters decodes application/x-www-form-urlencoded and
// multipart/form-data bodies of POST requests. Decoding failures are
// reported as ErrMalformedParameter and ErrMissingBoundary.
//
// # Limitations
//
// Header and status-line text is written as 7-bit ASCII; other characters are
// replaced by '?'. Multipart values are always decoded as trimmed text.
package message

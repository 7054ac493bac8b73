// Package parser turns a stream of request bytes into a message.Request.
//
// A RequestParser is fed successive buffers as they arrive from a socket.
// State persists between calls, so splitting the input differently never
// changes the parsed request:
//
//	p := parser.New()
//	for !p.Ready() {
//		n, _ := conn.Read(buf)
//		p.Feed(buf[:n])
//	}
//	req := p.Request()
//
// Parsing is best effort. Malformed input leaves the request in whatever
// state was reached; it never returns an error.
package parser

// Package engine is the native HTTP/1.1 server: a single goroutine runs a
// readiness loop (epoll on Linux, poll(2) on other Unix systems) over a
// non-blocking listening socket and its connections.
//
// Each connection carries exactly one request and one response. Bytes read
// from the socket drive a parser.RequestParser; once the request is complete
// the handler is called synchronously on the loop goroutine, the response is
// written and the connection is closed. There is no keep-alive and no worker
// pool, so a slow handler delays every other connection.
//
// Basic usage:
//
//	srv := engine.New(8080, handler,
//		engine.WithLogger(log),
//		engine.WithPollTimeout(engine.BoundedPollTimeout),
//	)
//	if err := srv.Start(); err != nil {
//		return err
//	}
//	defer srv.Stop()
//	fmt.Println("listening on", srv.Endpoint())
//
// Start returns once the socket is bound and registered. If the requested
// port is in use the next one is tried, up to 65535.
//
// The loop checks for Stop between readiness waits. By default a wait lasts
// until some socket is ready, so Stop on an idle server blocks until a
// client connects; WithPollTimeout bounds the wait.
package engine

// Package hostserver serves a servlet.Handler through Go's net/http server.
//
// It offers the same Start, Stop, StopAfter and Endpoint contract as the
// native engine so the two are interchangeable. Requests are copied into a
// message.Request (multi-valued headers joined with ";"), the handler runs
// through servlet.Invoke, and the message.Response is copied back.
//
// net/http writes its own reason phrase for the status code, so a custom
// status message set by the handler is not sent.
package hostserver

// Package localserver is the entry point for embedding a throwaway HTTP
// server in tests and tools.
//
// A LocalServer wraps one of two interchangeable implementations: the
// native readiness-loop engine (ImplementationLocal, the default) or an
// adapter over net/http (ImplementationHost).
//
//	srv, err := localserver.StartOnRandomPort(ctx, handler)
//	if err != nil {
//		t.Fatal(err)
//	}
//	defer srv.Stop()
//	addr := srv.Endpoint()
//
// StartOnRandomPort picks ports between 10000 and 18000 and checks each
// server with a `GET /` before returning it, so handler must answer that
// request with 200.
package localserver

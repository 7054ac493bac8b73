// Package localtest runs a scripted local server inside Go tests.
//
// Routes are declared with a fluent builder, the server is started on a
// random port and stopped when the test ends:
//
//	func TestFetch(t *testing.T) {
//	    srv := localtest.New(t)
//	    srv.Handle("GET", "/users/{id}").
//	        WithStatus(200).
//	        WithJSON(map[string]string{"name": "Ada"}).
//	        Reply()
//	    addr := srv.Start()
//
//	    // exercise code against addr ...
//
//	    srv.AssertCalledTimes(t, "GET", "/users/{id}", 1)
//	}
//
// Every request is recorded. Requests matching no route are answered with
// 404 NOT FOUND. A route limited with Times stops matching once used up.
package localtest

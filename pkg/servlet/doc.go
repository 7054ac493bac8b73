// Package servlet defines the handler contract shared by every server
// variant.
//
// A Handler receives a fully parsed request and a response already filled
// with default headers, and mutates the response in place. Servers call
// handlers through Invoke, which turns returned errors and panics into a
// 500 response carrying a diagnostic body.
//
// Servlet dispatches on the request method:
//
//	s := &servlet.Servlet{
//		Get: func(req *message.Request, resp *message.Response) error {
//			resp.SetContent("hello")
//			return nil
//		},
//	}
package servlet

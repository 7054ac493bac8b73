package servlet

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/Raphcal/localserver/pkg/message"
)

// Handler turns a request into response field values.
type Handler interface {
	HandleRequest(req *message.Request, resp *message.Response) error
}

// HandlerFunc adapts an ordinary function to Handler.
type HandlerFunc func(req *message.Request, resp *message.Response) error

// HandleRequest calls f(req, resp).
func (f HandlerFunc) HandleRequest(req *message.Request, resp *message.Response) error {
	return f(req, resp)
}

// PanicError is returned by Invoke when the handler panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Invoke runs h. A returned error or a panic replaces the response with a
// 500 INTERNAL SERVER ERROR whose body is the rendered failure; the failure
// is returned so the caller can log it. It never panics.
func Invoke(h Handler, req *message.Request, resp *message.Response) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
		if err != nil {
			WriteFailure(resp, err)
		}
	}()
	return h.HandleRequest(req, resp)
}

// WriteFailure sets resp to a 500 response describing err.
func WriteFailure(resp *message.Response, err error) {
	resp.SetStatus(message.StatusInternalServerError, message.StatusMessageInternalServerError)
	resp.SetContent(RenderTrace(err))
}

// RenderTrace formats err, its causes and, for a panic, the stack of the
// goroutine that panicked.
func RenderTrace(err error) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteByte('\n')
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		sb.WriteString("caused by: ")
		sb.WriteString(cause.Error())
		sb.WriteByte('\n')
	}

	var pe *PanicError
	if errors.As(err, &pe) && len(pe.Stack) > 0 {
		sb.WriteByte('\n')
		sb.Write(pe.Stack)
	}
	return sb.String()
}

// Servlet dispatches a request to the function registered for its method.
// Methods with no function leave the default response untouched; methods
// outside GET, POST, HEAD, OPTIONS, PUT, TRACE and DELETE get a 400.
type Servlet struct {
	Get     HandlerFunc
	Post    HandlerFunc
	Head    HandlerFunc
	Options HandlerFunc
	Put     HandlerFunc
	Trace   HandlerFunc
	Delete  HandlerFunc
}

// HandleRequest implements Handler.
func (s *Servlet) HandleRequest(req *message.Request, resp *message.Response) error {
	var fn HandlerFunc
	switch req.Method() {
	case message.MethodGet:
		fn = s.Get
	case message.MethodPost:
		fn = s.Post
	case message.MethodHead:
		fn = s.Head
	case message.MethodOptions:
		fn = s.Options
	case message.MethodPut:
		fn = s.Put
	case message.MethodTrace:
		fn = s.Trace
	case message.MethodDelete:
		fn = s.Delete
	default:
		resp.SetStatus(message.StatusBadRequest, message.StatusMessageBadRequest)
		return nil
	}
	if fn == nil {
		return nil
	}
	return fn(req, resp)
}

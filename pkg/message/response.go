package message

import (
	"io"
	"strconv"
	"time"
)

// Response is an HTTP response.
type Response struct {
	Message

	statusCode    int
	statusMessage string
}

// NewResponse returns an empty `200 OK` response.
func NewResponse() *Response {
	return &Response{
		statusCode:    StatusOK,
		statusMessage: StatusMessageOK,
	}
}

// ConfigureDefaults sets the headers every served response starts with:
// HTTP/1.1, `Content-Type: text/html`, `Connection: close` and a Date taken
// from now.
func (r *Response) ConfigureDefaults(now time.Time) {
	r.SetVersion(Version11)
	r.ClearHeaders()
	r.SetContentType(ContentTypeHTML)
	r.SetHeader(HeaderConnection, "close")
	r.SetHeader(HeaderDate, now.Format(DateLayout))
}

// StatusCode returns the status code.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// SetStatusCode sets the status code.
func (r *Response) SetStatusCode(code int) {
	r.statusCode = code
}

// StatusMessage returns the reason phrase.
func (r *Response) StatusMessage() string {
	return r.statusMessage
}

// SetStatusMessage sets the reason phrase.
func (r *Response) SetStatusMessage(message string) {
	r.statusMessage = message
}

// SetStatus sets both the status code and the reason phrase.
func (r *Response) SetStatus(code int, message string) {
	r.statusCode = code
	r.statusMessage = message
}

func (r *Response) firstLine() string {
	return r.Version() + " " + strconv.Itoa(r.statusCode) + " " + r.statusMessage
}

// Bytes serialises the response.
func (r *Response) Bytes() []byte {
	return r.bytes(r.firstLine())
}

// WriteHeader writes the status line and headers to w.
func (r *Response) WriteHeader(w io.Writer) error {
	return r.writeHeader(w, r.firstLine())
}

// WriteTo writes the serialised response to w.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	return r.writeTo(w, r.firstLine())
}

func (r *Response) String() string {
	return r.text(r.firstLine())
}

// Writer returns a writer appending to the content. Flush and Close move the
// buffered bytes into the content and refresh Content-Length.
func (r *Response) Writer() *ContentWriter {
	return &ContentWriter{msg: &r.Message}
}

// ContentWriter buffers writes to a message body.
type ContentWriter struct {
	msg *Message
	buf []byte
}

func (w *ContentWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// WriteString writes s encoded with the message charset.
func (w *ContentWriter) WriteString(s string) (int, error) {
	return w.Write(w.msg.Charset().Encode(s))
}

// Flush appends the buffered bytes to the content.
func (w *ContentWriter) Flush() error {
	w.msg.AppendContentBytes(w.buf, true)
	w.buf = w.buf[:0]
	return nil
}

// Close flushes the writer.
func (w *ContentWriter) Close() error {
	return w.Flush()
}

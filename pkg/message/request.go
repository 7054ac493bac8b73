package message

import (
	"bytes"
	"io"
	"strings"
)

// Request is an HTTP request. The zero value is an empty request; the
// parser fills one in field by field.
type Request struct {
	Message

	method string
	target string

	params      map[string]string
	paramsErr   error
	paramsBuilt bool
}

// NewRequest returns a request initialised by ConfigureDefaults.
func NewRequest() *Request {
	r := &Request{}
	r.ConfigureDefaults()
	return r
}

// ConfigureDefaults resets the request to `GET / HTTP/1.1` with a
// `text/plain; charset=US-ASCII` content type and `Connection: close`.
func (r *Request) ConfigureDefaults() {
	r.method = MethodGet
	r.target = "/"
	r.SetVersion(Version11)
	r.ClearHeaders()
	r.contentType = ContentTypePlain
	r.SetCharset(USASCII)
	r.SetHeader(HeaderConnection, "close")
}

// Method returns the request method.
func (r *Request) Method() string {
	return r.method
}

// SetMethod sets the request method.
func (r *Request) SetMethod(method string) {
	r.method = method
}

// Target returns the request target, a path or an absolute URI.
func (r *Request) Target() string {
	return r.target
}

// SetTarget sets the request target.
func (r *Request) SetTarget(target string) {
	r.target = target
}

func (r *Request) firstLine() string {
	return r.method + " " + r.target + " " + r.Version()
}

// Parameters returns the form parameters of a POST request. The body is
// decoded on the first call and the result, or the decoding error, is
// reused afterwards. Other methods always get an empty map.
func (r *Request) Parameters() (map[string]string, error) {
	if !strings.EqualFold(r.method, MethodPost) {
		return map[string]string{}, nil
	}
	if !r.paramsBuilt {
		r.params, r.paramsErr = decodeForm(&r.Message)
		r.paramsBuilt = true
	}
	return r.params, r.paramsErr
}

// Parameter returns one form parameter of a POST request.
func (r *Request) Parameter(name string) (string, error) {
	params, err := r.Parameters()
	if err != nil {
		return "", err
	}
	return params[name], nil
}

// Reader returns a reader over the raw content.
func (r *Request) Reader() io.Reader {
	return bytes.NewReader(r.ContentBytes())
}

// Bytes serialises the request.
func (r *Request) Bytes() []byte {
	return r.bytes(r.firstLine())
}

// WriteHeader writes the request line and headers to w.
func (r *Request) WriteHeader(w io.Writer) error {
	return r.writeHeader(w, r.firstLine())
}

// WriteTo writes the serialised request to w.
func (r *Request) WriteTo(w io.Writer) (int64, error) {
	return r.writeTo(w, r.firstLine())
}

func (r *Request) String() string {
	return r.text(r.firstLine())
}

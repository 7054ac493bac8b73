package message

// Protocol versions.
const (
	Version10 = "HTTP/1.0"
	Version11 = "HTTP/1.1"
)

// Request methods.
const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodHead    = "HEAD"
	MethodDelete  = "DELETE"
	MethodOptions = "OPTIONS"
	MethodTrace   = "TRACE"
	MethodConnect = "CONNECT"
)

// Header names.
const (
	HeaderAuthorization      = "Authorization"
	HeaderConnection         = "Connection"
	HeaderContentDisposition = "Content-Disposition"
	HeaderContentLength      = "Content-Length"
	HeaderContentType        = "Content-Type"
	HeaderDate               = "Date"
	HeaderHost               = "Host"
	HeaderLocation           = "Location"
	HeaderServer             = "Server"
	HeaderTransferEncoding   = "Transfer-Encoding"
	HeaderUserAgent          = "User-Agent"
)

// Content types and codings understood by the decoders.
const (
	ContentTypeForm      = "application/x-www-form-urlencoded"
	ContentTypeMultipart = "multipart/form-data"
	ContentTypeHTML      = "text/html"
	ContentTypePlain     = "text/plain"

	TransferEncodingChunked = "chunked"
)

// Status codes and the messages written with them.
const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusNotFound            = 404
	StatusInternalServerError = 500

	StatusMessageOK                  = "OK"
	StatusMessageBadRequest          = "BAD REQUEST"
	StatusMessageNotFound            = "NOT FOUND"
	StatusMessageInternalServerError = "INTERNAL SERVER ERROR"
)

// DateLayout is the layout of the Date header written by ConfigureDefaults.
const DateLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

package message

import (
	"bytes"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Message holds the state shared by requests and responses. The zero value
// is an empty message with no version.
type Message struct {
	version string
	header  Header
	content bytes.Buffer

	contentType  string
	charset      *Charset
	formBoundary string
}

// Version returns the protocol version, for example "HTTP/1.1".
func (m *Message) Version() string {
	return m.version
}

// SetVersion sets the protocol version.
func (m *Message) SetVersion(version string) {
	m.version = version
}

// SetHeader stores or overwrites a header. Setting Content-Type re-derives
// ContentType, Charset and FormBoundary from the value; an unknown charset
// leaves the current one in place.
func (m *Message) SetHeader(name, value string) {
	m.header.Set(name, value)

	if !strings.EqualFold(name, HeaderContentType) {
		return
	}
	hv := ParseHeaderValue(value)
	m.contentType = hv.Main
	if csName, ok := hv.Param("charset"); ok {
		if cs, err := LookupCharset(csName); err == nil {
			m.charset = cs
		}
	}
	m.formBoundary, _ = hv.Param("boundary")
}

// Header returns the value of the named header, or "" when absent.
func (m *Message) Header(name string) string {
	return m.header.Get(name)
}

// LookupHeader returns the value of the named header and whether it is set.
func (m *Message) LookupHeader(name string) (string, bool) {
	return m.header.Lookup(name)
}

// RemoveHeader removes the named header.
func (m *Message) RemoveHeader(name string) {
	m.header.Del(name)
}

// ClearHeaders removes every header. Derived content type fields are kept.
func (m *Message) ClearHeaders() {
	m.header.Reset()
}

// Headers iterates over the headers in insertion order.
func (m *Message) Headers() iter.Seq2[string, string] {
	return m.header.All()
}

// HeaderMap returns a copy of the headers.
func (m *Message) HeaderMap() map[string]string {
	return m.header.Map()
}

// SetContent replaces the content with s and refreshes Content-Length and
// Content-Type.
func (m *Message) SetContent(s string) {
	m.SetContentString(s, true)
}

// SetContentString replaces the content with s encoded in the message
// charset.
func (m *Message) SetContentString(s string, refresh bool) {
	m.content.Reset()
	m.AppendContentString(s, refresh)
}

// AppendContentString appends s encoded in the message charset.
func (m *Message) AppendContentString(s string, refresh bool) {
	m.AppendContentBytes(m.Charset().Encode(s), refresh)
}

// SetContentBytes replaces the content with b.
func (m *Message) SetContentBytes(b []byte, refresh bool) {
	m.content.Reset()
	m.AppendContentBytes(b, refresh)
}

// AppendContentBytes appends b to the content. When refresh is true the
// Content-Length and Content-Type headers are rewritten.
func (m *Message) AppendContentBytes(b []byte, refresh bool) {
	m.content.Write(b)
	if refresh {
		m.header.Set(HeaderContentLength, strconv.Itoa(m.content.Len()))
		m.refreshContentType()
	}
}

// Content returns the content decoded with the message charset.
func (m *Message) Content() string {
	return m.Charset().Decode(m.content.Bytes())
}

// ContentBytes returns a copy of the raw content.
func (m *Message) ContentBytes() []byte {
	return bytes.Clone(m.content.Bytes())
}

// ContentSize returns the number of content bytes held.
func (m *Message) ContentSize() int {
	return m.content.Len()
}

// ContentLength returns the Content-Length header value, 0 when it is
// absent or not a non-negative integer.
func (m *Message) ContentLength() int {
	v, ok := m.header.Lookup(HeaderContentLength)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ContentType returns the main value of the Content-Type header.
func (m *Message) ContentType() string {
	return m.contentType
}

// SetContentType sets the content type and rewrites the Content-Type header.
func (m *Message) SetContentType(contentType string) {
	m.contentType = contentType
	m.refreshContentType()
}

// Charset returns the message charset, DefaultCharset when none is set.
func (m *Message) Charset() *Charset {
	if m.charset != nil {
		return m.charset
	}
	return DefaultCharset
}

// HasCharset reports whether a charset was set explicitly.
func (m *Message) HasCharset() bool {
	return m.charset != nil
}

// SetCharset sets the content charset and rewrites the Content-Type header.
// A nil charset falls back to DefaultCharset.
func (m *Message) SetCharset(cs *Charset) {
	m.charset = cs
	m.refreshContentType()
}

// FormBoundary returns the multipart boundary of the Content-Type header.
func (m *Message) FormBoundary() string {
	return m.formBoundary
}

func (m *Message) refreshContentType() {
	value := m.contentType
	if m.charset != nil {
		value += "; charset=" + m.charset.Name()
	}
	if value == "" {
		return
	}
	m.header.Set(HeaderContentType, value)
}

func (m *Message) appendHead(dst []byte, firstLine string) []byte {
	dst = asciiBytes(dst, firstLine)
	dst = append(dst, '\r', '\n')
	for name, value := range m.header.All() {
		dst = asciiBytes(dst, name)
		dst = append(dst, ':', ' ')
		dst = asciiBytes(dst, value)
		dst = append(dst, '\r', '\n')
	}
	return append(dst, '\r', '\n')
}

func (m *Message) bytes(firstLine string) []byte {
	buf := make([]byte, 0, 256+m.content.Len())
	buf = m.appendHead(buf, firstLine)
	return append(buf, m.content.Bytes()...)
}

func (m *Message) writeHeader(w io.Writer, firstLine string) error {
	_, err := w.Write(m.appendHead(nil, firstLine))
	return err
}

func (m *Message) writeTo(w io.Writer, firstLine string) (int64, error) {
	n, err := w.Write(m.bytes(firstLine))
	return int64(n), err
}

func (m *Message) text(firstLine string) string {
	var sb strings.Builder
	sb.WriteString(firstLine)
	sb.WriteString("\r\n")
	for name, value := range m.header.All() {
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\r\n")
	}
	sb.WriteString("\r\n")
	sb.WriteString(m.Content())
	return sb.String()
}

package message

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Charset converts between text and the bytes of a message body.
type Charset struct {
	name string
	enc  encoding.Encoding
}

// Well-known charsets.
var (
	UTF8     = &Charset{name: "UTF-8", enc: unicode.UTF8}
	ISO88591 = &Charset{name: "ISO-8859-1", enc: charmap.ISO8859_1}
	USASCII  = knownCharset("US-ASCII", charmap.ISO8859_1)
)

// DefaultCharset is used when a message declares none.
var DefaultCharset = UTF8

func knownCharset(name string, fallback encoding.Encoding) *Charset {
	if cs, err := LookupCharset(name); err == nil {
		return cs
	}
	return &Charset{name: name, enc: fallback}
}

// LookupCharset resolves an IANA charset name or alias.
func LookupCharset(name string) (*Charset, error) {
	name = strings.TrimSpace(name)
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return UTF8, nil
	}

	enc, err := ianaindex.MIME.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCharset, name)
	}
	canonical, err := ianaindex.MIME.Name(enc)
	if err != nil || canonical == "" {
		canonical = name
	}
	return &Charset{name: canonical, enc: enc}, nil
}

// Name returns the canonical name written in Content-Type headers.
func (c *Charset) Name() string {
	return c.name
}

func (c *Charset) String() string {
	return c.name
}

// Encode converts s to bytes. Characters the charset cannot represent are
// replaced.
func (c *Charset) Encode(s string) []byte {
	if c.enc == unicode.UTF8 {
		return []byte(s)
	}
	b, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return b
}

// Decode converts b to text.
func (c *Charset) Decode(b []byte) string {
	if c.enc == unicode.UTF8 {
		return string(b)
	}
	s, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// asciiBytes writes s as 7-bit text, replacing anything else with '?'.
func asciiBytes(dst []byte, s string) []byte {
	for _, r := range s {
		if r > 0x7f {
			r = '?'
		}
		dst = append(dst, byte(r))
	}
	return dst
}

package message

import (
	"fmt"
	"net/url"
	"strings"
)

// IsWhitespace reports whether c separates tokens in a request head.
// It matches space, tab, the line and form feeds, carriage return and the
// ASCII separator controls 0x1C to 0x1F.
func IsWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0x1c, 0x1d, 0x1e, 0x1f:
		return true
	}
	return false
}

func decodeForm(m *Message) (map[string]string, error) {
	switch m.ContentType() {
	case ContentTypeForm:
		return decodeURLEncoded(m.Content())
	case ContentTypeMultipart:
		if m.FormBoundary() == "" {
			return nil, ErrMissingBoundary
		}
		return decodeMultipart(m.Content(), m.FormBoundary()), nil
	}
	return map[string]string{}, nil
}

// decodeURLEncoded splits each item on its first '='. Items without '=' are
// rejected rather than guessed at.
func decodeURLEncoded(content string) (map[string]string, error) {
	params := make(map[string]string)
	for _, item := range strings.Split(content, "&") {
		if item == "" {
			continue
		}
		rawName, rawValue, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q has no value", ErrMalformedParameter, item)
		}
		name, err := url.QueryUnescape(rawName)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedParameter, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedParameter, err)
		}
		params[name] = value
	}
	return params, nil
}

func decodeMultipart(content, boundary string) map[string]string {
	params := make(map[string]string)
	marker := "--" + boundary

	index := 0
	for {
		start := strings.Index(content[index:], marker)
		if start < 0 {
			return params
		}
		index += start + len(marker)
		if strings.HasPrefix(content[index:], "--") {
			return params
		}

		var headers Header
		index = scanPartHeaders(content, index, &headers)

		end := strings.Index(content[index:], marker)
		last := end < 0
		if last {
			end = len(content) - index
		}
		value := strings.TrimSpace(content[index : index+end])
		if name, ok := ParseHeaderValue(headers.Get(HeaderContentDisposition)).Param("name"); ok {
			params[name] = value
		}
		if last {
			return params
		}
		index += end
	}
}

// scanPartHeaders reads a part header block starting at index and returns
// the index just after the blank line that ends it.
func scanPartHeaders(content string, index int, headers *Header) int {
	var token strings.Builder
	var current string
	readingName := true
	parsing := false
	newlines := 0

	for index < len(content) && newlines < 2 {
		c := content[index]
		index++

		if readingName {
			if IsWhitespace(c) || c == ':' {
				if parsing && c == ':' {
					current = token.String()
					readingName = false
					token.Reset()
					parsing = false
				}
			} else {
				token.WriteByte(c)
				parsing = true
			}
		} else {
			if c == '\r' || c == '\n' {
				if parsing {
					headers.Set(current, token.String())
					readingName = true
					token.Reset()
					parsing = false
				}
			} else if parsing || c != ' ' {
				token.WriteByte(c)
				parsing = true
			}
		}

		switch c {
		case '\n':
			newlines++
		case '\r':
		default:
			newlines = 0
		}
	}
	return index
}

package message

import (
	"fmt"
	"strconv"
	"strings"
)

// DecodeResponse parses a complete raw response: the status line, the
// headers up to the first line without a ':' and the body. A chunked body
// is decoded; any other body is taken verbatim. Lines are expected to end
// with CRLF.
func DecodeResponse(data []byte) (*Response, error) {
	offset, line := nextLine(data, 0)
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedStatusLine, line)
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: status %q", ErrMalformedStatusLine, parts[1])
	}

	resp := NewResponse()
	resp.SetVersion(parts[0])
	resp.SetStatus(code, parts[2])

	for offset < len(data) {
		offset, line = nextLine(data, offset+2)
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			break
		}
		resp.SetHeader(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	offset = min(offset+2, len(data))

	body := data[offset:]
	if strings.EqualFold(strings.TrimSpace(resp.Header(HeaderTransferEncoding)), TransferEncodingChunked) {
		body = DecodeChunked(body)
	}
	resp.SetContentBytes(body, false)
	return resp, nil
}

// nextLine returns the text from off up to the next CR or LF and the index
// of that terminator.
func nextLine(data []byte, off int) (int, string) {
	start := min(off, len(data))
	end := start
	for end < len(data) && data[end] != '\r' && data[end] != '\n' {
		end++
	}
	return end, string(data[start:end])
}

// DecodeChunked decodes a chunked transfer-coded body. Each chunk size is
// read as hex digits up to CR (spaces and other bytes are skipped), followed
// by CRLF, the chunk bytes and a trailing CRLF. Decoding runs until the input
// is exhausted; a zero-size chunk does not end it on its own. Truncated
// chunks yield the bytes that are present.
func DecodeChunked(data []byte) []byte {
	out := make([]byte, 0, len(data))
	off := 0
	for off < len(data) {
		size := 0
		for off < len(data) && data[off] != '\r' {
			if v, ok := hexValue(data[off]); ok && size <= len(data) {
				size = size*16 + v
			}
			off++
		}
		off += 2
		if off >= len(data) {
			break
		}
		end := min(off+size, len(data))
		out = append(out, data[off:end]...)
		off = end + 2
	}
	return out
}

func hexValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

package parser

import (
	"bytes"

	"github.com/Raphcal/localserver/pkg/message"
)

// RequestParser is an incremental HTTP request parser. It is not safe for
// concurrent use; each connection owns its own parser.
type RequestParser struct {
	state   State
	request *message.Request

	token    []byte
	parsing  bool
	header   string
	newlines int

	body     bytes.Buffer
	received int
}

// New returns a parser waiting for the request method.
func New() *RequestParser {
	return &RequestParser{request: &message.Request{}}
}

// Reset discards all state so the parser can read a new request.
func (p *RequestParser) Reset() {
	p.state = StateMethod
	p.request = &message.Request{}
	p.token = p.token[:0]
	p.parsing = false
	p.header = ""
	p.newlines = 0
	p.body.Reset()
	p.received = 0
}

// State returns the current parser state.
func (p *RequestParser) State() State {
	return p.state
}

// Ready reports whether a complete request has been read.
func (p *RequestParser) Ready() bool {
	return p.state == StateEnd
}

// Request returns the request being built. It is complete once Ready
// returns true.
func (p *RequestParser) Request() *message.Request {
	return p.request
}

// Write feeds p to the parser. It always consumes the whole slice; bytes
// received after the request is complete are dropped.
func (p *RequestParser) Write(b []byte) (int, error) {
	p.Feed(b)
	return len(b), nil
}

// Feed consumes bytes from b until the request is complete and returns the
// number of bytes consumed.
func (p *RequestParser) Feed(b []byte) int {
	n := 0
	for n < len(b) && p.state != StateEnd {
		c := b[n]
		n++

		switch p.state {
		case StateMethod, StateTarget, StateVersion:
			p.requestLine(c)
			p.countNewline(c)
		case StateHeaderName:
			p.headerName(c)
			p.countNewline(c)
			p.endOfHeaders()
		case StateHeaderValue:
			p.headerValue(c)
			p.countNewline(c)
			p.endOfHeaders()
		case StateBody:
			p.body.WriteByte(c)
			p.received++
			p.checkBody()
		}
	}
	return n
}

func (p *RequestParser) requestLine(c byte) {
	if !message.IsWhitespace(c) {
		p.token = append(p.token, c)
		p.parsing = true
		return
	}
	if !p.parsing {
		return
	}

	value := p.closeToken()
	switch p.state {
	case StateMethod:
		p.request.SetMethod(value)
		p.state = StateTarget
	case StateTarget:
		p.request.SetTarget(value)
		p.state = StateVersion
	case StateVersion:
		p.request.SetVersion(value)
		p.state = StateHeaderName
	}
}

func (p *RequestParser) headerName(c byte) {
	if !message.IsWhitespace(c) && c != ':' {
		p.token = append(p.token, c)
		p.parsing = true
		return
	}
	if p.parsing && c == ':' {
		p.header = p.closeToken()
		p.state = StateHeaderValue
	}
}

func (p *RequestParser) headerValue(c byte) {
	switch {
	case c == '\r' || c == '\n':
		if p.parsing {
			p.request.SetHeader(p.header, p.closeToken())
			p.header = ""
			p.state = StateHeaderName
		}
	case p.parsing || c != ' ':
		p.token = append(p.token, c)
		p.parsing = true
	}
}

func (p *RequestParser) closeToken() string {
	s := string(p.token)
	p.token = p.token[:0]
	p.parsing = false
	return s
}

func (p *RequestParser) countNewline(c byte) {
	switch c {
	case '\n':
		p.newlines++
	case '\r':
	default:
		p.newlines = 0
	}
}

// endOfHeaders moves to the body once a blank line has been seen.
func (p *RequestParser) endOfHeaders() {
	if p.newlines < 2 {
		return
	}
	p.token = p.token[:0]
	p.parsing = false
	p.state = StateBody
	p.checkBody()
}

func (p *RequestParser) checkBody() {
	if p.received < p.request.ContentLength() {
		return
	}
	p.request.SetContentBytes(p.body.Bytes(), false)
	p.state = StateEnd
}

package hostserver

import (
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/Raphcal/localserver/pkg/message"
)

// ToRequest copies r into a message.Request. Header names are visited in
// sorted order and multi-valued headers are joined with ";".
func ToRequest(r *http.Request) (*message.Request, error) {
	req := &message.Request{}
	req.SetMethod(r.Method)
	req.SetTarget(r.RequestURI)
	req.SetVersion(r.Proto)

	if r.Host != "" {
		req.SetHeader(message.HeaderHost, r.Host)
	}
	for _, name := range slices.Sorted(maps.Keys(r.Header)) {
		req.SetHeader(name, strings.Join(r.Header[name], ";"))
	}

	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
		req.SetContentBytes(body, true)
	}
	return req, nil
}

// WriteResponse copies resp to w. Content-Length always matches the bytes
// written.
func WriteResponse(w http.ResponseWriter, resp *message.Response) error {
	h := w.Header()
	for name, value := range resp.Headers() {
		h.Set(name, value)
	}
	body := resp.ContentBytes()
	h.Set(message.HeaderContentLength, strconv.Itoa(len(body)))

	w.WriteHeader(resp.StatusCode())
	_, err := w.Write(body)
	return err
}

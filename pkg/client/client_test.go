package client

import (
	"bufio"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raphcal/localserver/pkg/message"
)

// rawServer accepts one connection, records the request head and answers
// with reply before closing.
func rawServer(t *testing.T, reply string) (string, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	heads := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		var head strings.Builder
		length := 0
		for {
			line, err := r.ReadString('\n')
			head.WriteString(line)
			if err != nil || line == "\r\n" {
				break
			}
			if name, value, ok := strings.Cut(line, ":"); ok && strings.EqualFold(name, "Content-Length") {
				length, _ = strconv.Atoi(strings.TrimSpace(value))
			}
		}
		_, _ = io.CopyN(io.Discard, r, int64(length))
		heads <- head.String()
		_, _ = io.WriteString(conn, reply)
	}()
	return ln.Addr().String(), heads
}

func TestGet(t *testing.T) {
	addr, heads := rawServer(t, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello")

	resp, err := Get(context.Background(), addr, "/greeting")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, "hello", resp.Content())

	head := <-heads
	assert.True(t, strings.HasPrefix(head, "GET /greeting HTTP/1.1\r\n"))
	assert.Contains(t, head, "Host: "+addr+"\r\n")
	assert.Contains(t, head, "Connection: close\r\n")
	assert.Contains(t, head, "User-Agent: localserver-client\r\n")
}

func TestDo_Chunked(t *testing.T) {
	addr, _ := rawServer(t, "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n")

	req := NewRequest(message.MethodPost, addr, "/wiki")
	req.SetContent("q=1")
	resp, err := New().Do(context.Background(), addr, req)
	require.NoError(t, err)
	assert.Equal(t, "Wikipedia", resp.Content())
}

func TestDo_Errors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := ln.Addr().String()
		require.NoError(t, ln.Close())

		_, err = Get(context.Background(), addr, "/")
		assert.Error(t, err)
	})

	t.Run("empty response", func(t *testing.T) {
		addr, _ := rawServer(t, "")
		_, err := Get(context.Background(), addr, "/")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("malformed status line", func(t *testing.T) {
		addr, _ := rawServer(t, "garbage\r\n\r\n")
		_, err := Get(context.Background(), addr, "/")
		assert.ErrorIs(t, err, message.ErrMalformedStatusLine)
	})

	t.Run("server never closes", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()
		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			time.Sleep(2 * time.Second)
			conn.Close()
		}()

		c := New(WithTimeout(100 * time.Millisecond))
		start := time.Now()
		_, err = c.Get(context.Background(), ln.Addr().String(), "/")
		assert.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})
}

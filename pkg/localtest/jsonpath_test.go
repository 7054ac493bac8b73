package localtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raphcal/localserver/pkg/client"
)

const orderBody = `{"user": {"name": "ada", "roles": ["admin", "dev"]}, "total": 120, "items": [{"id": 1}, {"id": 2}]}`

func TestRequestLog_JSONPath(t *testing.T) {
	t.Parallel()

	log := &RequestLog{Body: orderBody}

	tests := []struct {
		path     string
		expected []any
	}{
		{"$.user.name", []any{"ada"}},
		{"$.user.roles[*]", []any{"admin", "dev"}},
		{"$.items[*].id", []any{float64(1), float64(2)}},
		{"$.missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := log.JSONPath(tt.path)
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("invalid expression", func(t *testing.T) {
		_, err := log.JSONPath("$.user[")
		assert.Error(t, err)
	})

	t.Run("body is not JSON", func(t *testing.T) {
		_, err := (&RequestLog{Body: "name=ada"}).JSONPath("$.name")
		assert.ErrorContains(t, err, "not valid JSON")
	})
}

func TestRequestLog_AssertJSONPath(t *testing.T) {
	t.Parallel()

	log := &RequestLog{Body: orderBody}
	log.AssertJSONPath(t, "$.user.name", "ada")
	log.AssertJSONPath(t, "$.total", 120)
	log.AssertJSONPath(t, "$.user.roles[*]", "dev")
	log.AssertJSONPath(t, "$.items[0]", map[string]any{"id": 1})

	rec := &recorder{}
	log.AssertJSONPath(rec, "$.user.name", "bob")
	log.AssertJSONPath(rec, "$.user.email", "ada@example.com")
	log.AssertJSONPath(rec, "$.user[", "x")
	(&RequestLog{Body: "plain"}).AssertJSONPath(rec, "$.a", 1)
	require.Len(t, rec.errors, 4)
	assert.Contains(t, rec.errors[0], "value mismatch")
	assert.Contains(t, rec.errors[1], "matched nothing")
	assert.Contains(t, rec.errors[2], "parsing JSONPath")
	assert.Contains(t, rec.errors[3], "not valid JSON")
}

func TestServer_WhenJSONPath(t *testing.T) {
	t.Parallel()

	srv := New(t)
	srv.Handle("POST", "/orders").
		When(`JSONPath("$.total") > 100 && JSONPath("$.user.name") == "ada"`).
		WithStatus(402).
		Reply()
	srv.Handle("POST", "/orders").WithStatus(201).Reply()
	addr := srv.Start()

	post := func(body string) int {
		req := client.NewRequest("POST", addr, "/orders")
		req.SetHeader("Content-Type", "application/json")
		req.SetContent(body)
		resp, err := client.Do(context.Background(), addr, req)
		require.NoError(t, err)
		return resp.StatusCode()
	}

	assert.Equal(t, 402, post(orderBody))
	assert.Equal(t, 201, post(`{"total": 5, "user": {"name": "ada"}}`))
	assert.Equal(t, 201, post(`{"user": {"name": "ada"}}`), "a missing value does not match")
	assert.Equal(t, 201, post(`not json`))

	last, ok := srv.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "POST /orders", last.Route)
}

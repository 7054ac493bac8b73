package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCharset(t *testing.T) {
	tests := []struct {
		input string
		name  string
	}{
		{"UTF-8", "UTF-8"},
		{"utf8", "UTF-8"},
		{" utf-8 ", "UTF-8"},
		{"ISO-8859-1", "ISO-8859-1"},
		{"iso-8859-1", "ISO-8859-1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cs, err := LookupCharset(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.name, cs.Name())
		})
	}
}

func TestLookupCharset_Unsupported(t *testing.T) {
	_, err := LookupCharset("no-such-charset")
	assert.ErrorIs(t, err, ErrUnsupportedCharset)
}

func TestCharset_EncodeDecode(t *testing.T) {
	assert.Equal(t, []byte{'c', 'a', 'f', 0xe9}, ISO88591.Encode("café"))
	assert.Equal(t, "café", ISO88591.Decode([]byte{'c', 'a', 'f', 0xe9}))

	assert.Equal(t, []byte("café"), UTF8.Encode("café"))
	assert.Equal(t, "café", UTF8.Decode([]byte("café")))
}

func TestCharset_EncodeReplacesUnsupported(t *testing.T) {
	out := ISO88591.Encode("a€b")
	assert.Len(t, out, 3)
	assert.Equal(t, byte('a'), out[0])
	assert.Equal(t, byte('b'), out[2])
}

func TestASCIIBytes(t *testing.T) {
	assert.Equal(t, []byte("caf?"), asciiBytes(nil, "café"))
	assert.Equal(t, []byte("x: y"), asciiBytes([]byte("x"), ": y"))
}

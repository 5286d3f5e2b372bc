package codec

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGzipCodec_SharesInnerContentType(t *testing.T) {
	t.Parallel()

	c := NewGzip(NewJSONCodec())
	assert.Equal(t, ContentTypeJSON, c.ContentType())
	assert.Equal(t, EncodingGzip, c.ContentEncoding())
	assert.Equal(t, gzip.DefaultCompression, c.Level())
	assert.IsType(t, &JSONCodec{}, c.Inner())
}

func TestGzipCodec_OutputIsGzip(t *testing.T) {
	t.Parallel()

	c := NewGzip(NewJSONCodec())
	data, err := c.Marshal(newTestPayload())
	require.NoError(t, err)

	// gzip magic header
	require.GreaterOrEqual(t, len(data), 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, data[:2])

	plain, err := NewJSONCodec().Marshal(newTestPayload())
	require.NoError(t, err)
	assert.False(t, bytes.Equal(plain, data))
}

func TestGzipCodec_ReusesPooledState(t *testing.T) {
	t.Parallel()

	c := NewGzip(NewBSONCodec())
	for i := 0; i < 5; i++ {
		in := newTestPayload()
		in.ID = i
		data, err := c.Marshal(in)
		require.NoError(t, err)

		out, err := Decode(c, data, reflect.TypeOf(in))
		require.NoError(t, err)
		assertSamePayload(t, in, out)
	}
}

func TestGzipCodec_Levels(t *testing.T) {
	t.Parallel()

	c, err := NewGzipLevel(NewXMLCodec(), gzip.BestSpeed)
	require.NoError(t, err)
	assert.Equal(t, gzip.BestSpeed, c.Level())

	_, err = NewGzipLevel(NewXMLCodec(), 42)
	require.Error(t, err)

	_, err = NewGzipLevel(nil, gzip.BestSpeed)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGzipCodec_RejectsPlainInput(t *testing.T) {
	t.Parallel()

	plain, err := NewJSONCodec().Marshal(newTestPayload())
	require.NoError(t, err)

	var out testPayload
	err = NewGzip(NewJSONCodec()).Unmarshal(plain, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")
}

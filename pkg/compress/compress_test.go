// pkg/compress/compress_test.go
package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloads() map[string][]byte {
	return map[string][]byte{
		"empty":      {},
		"short":      []byte("Gum Gum"),
		"repetitive": bytes.Repeat([]byte(`{"name":"Usopp","level":1}`), 200),
		"binary":     {0x00, 0xff, 0x10, 0x80, 0x7f},
	}
}

func TestCompressorsRoundTrip(t *testing.T) {
	for _, typ := range List() {
		c, err := New(typ)
		require.NoError(t, err)
		assert.Equal(t, string(typ), c.Name())

		for name, data := range payloads() {
			packed, err := c.Compress(data)
			require.NoError(t, err, "%s/%s", typ, name)
			got, err := c.Decompress(packed)
			require.NoError(t, err, "%s/%s", typ, name)
			assert.Equal(t, len(data), len(got), "%s/%s", typ, name)
			assert.True(t, bytes.Equal(data, got), "%s/%s", typ, name)
		}
	}
}

func TestRepetitiveDataShrinks(t *testing.T) {
	data := payloads()["repetitive"]
	for _, typ := range []Type{TypeSnappy, TypeZstd, TypeLZ4} {
		c, err := New(typ)
		require.NoError(t, err)
		packed, err := c.Compress(data)
		require.NoError(t, err)
		assert.Less(t, len(packed), len(data)/4, typ)
	}
}

func TestNewUnsupported(t *testing.T) {
	_, err := New("brotli")
	assert.ErrorIs(t, err, ErrUnsupported)

	c, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "none", c.Name())
}

func TestCodecReadsAnyAlgorithm(t *testing.T) {
	data := payloads()["repetitive"]

	zstdCodec, err := NewCodec(TypeZstd)
	require.NoError(t, err)
	lz4Codec, err := NewCodec(TypeLZ4)
	require.NoError(t, err)

	packed, err := zstdCodec.Pack(data)
	require.NoError(t, err)
	assert.Equal(t, byte(2), packed[0])

	got, err := lz4Codec.Unpack(packed)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, TypeLZ4, lz4Codec.Type())
}

func TestCodecRejectsBadEnvelope(t *testing.T) {
	c, err := NewCodec(TypeNone)
	require.NoError(t, err)

	_, err = c.Unpack(nil)
	assert.ErrorIs(t, err, ErrBadEnvelope)
	_, err = c.Unpack([]byte{9, 1, 2})
	assert.ErrorIs(t, err, ErrBadEnvelope)

	_, err = NewCodec("gzip")
	assert.ErrorIs(t, err, ErrUnsupported)
}

package bytebuff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolReuse(t *testing.T) {
	p := &Pool{}
	buf := p.Get()
	_, _ = buf.WriteString("hello")
	assert.Equal(t, "hello", buf.String())
	p.Put(buf)
	p.Put(nil)

	again := p.Get()
	assert.Equal(t, 0, again.Len(), "buffers come back reset")

	gets, puts := p.Stats()
	assert.EqualValues(t, 2, gets)
	assert.EqualValues(t, 1, puts)
}

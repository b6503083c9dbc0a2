// Package bytebuff 复用编码缓冲区，底层为 valyala/bytebufferpool
package bytebuff

import (
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// Pool 带统计的 ByteBuffer 池
type Pool struct {
	pool bytebufferpool.Pool
	gets atomic.Uint64
	puts atomic.Uint64
}

var defaultPool = &Pool{}

func (p *Pool) Get() *bytebufferpool.ByteBuffer {
	p.gets.Add(1)
	return p.pool.Get()
}

func (p *Pool) Put(buf *bytebufferpool.ByteBuffer) {
	if buf == nil {
		return
	}
	p.puts.Add(1)
	p.pool.Put(buf)
}

// Stats 累计的 Get/Put 次数
func (p *Pool) Stats() (gets, puts uint64) {
	return p.gets.Load(), p.puts.Load()
}

func Get() *bytebufferpool.ByteBuffer { return defaultPool.Get() }

func Put(buf *bytebufferpool.ByteBuffer) { defaultPool.Put(buf) }

func Stats() (gets, puts uint64) { return defaultPool.Stats() }

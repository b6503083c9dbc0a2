// Package keylock 按 key 分段的互斥锁
package keylock

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Striped 固定数量的互斥锁，key 经 xxhash 映射到其中之一。
// 不同 key 可能落在同一段上，因此持有一个 key 时不要再去获取另一个 key。
type Striped struct {
	stripes []sync.Mutex
	mask    uint64
}

// New n 向上取整到 2 的幂
func New(n int) *Striped {
	size := 1
	for size < n {
		size <<= 1
	}
	return &Striped{
		stripes: make([]sync.Mutex, size),
		mask:    uint64(size - 1),
	}
}

func (s *Striped) stripe(key string) *sync.Mutex {
	return &s.stripes[xxhash.Sum64String(key)&s.mask]
}

func (s *Striped) Lock(key string) {
	s.stripe(key).Lock()
}

func (s *Striped) Unlock(key string) {
	s.stripe(key).Unlock()
}

// With 持锁执行 fn
func (s *Striped) With(key string, fn func() error) error {
	m := s.stripe(key)
	m.Lock()
	defer m.Unlock()
	return fn()
}

// Len 段数
func (s *Striped) Len() int {
	return len(s.stripes)
}

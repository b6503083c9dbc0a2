package lru

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestLRUEvictsOldest(t *testing.T) {
	var evicted []string
	c := New[string, int](Config{MaxSize: 2}, WithOnEvict(func(k string, _ int) {
		evicted = append(evicted, k)
	}))
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, 2, c.Len())
}

func TestLRUExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := New[string, string](Config{MaxSize: 10, DefaultTTL: time.Minute}, WithClock[string, string](clock.Now))
	defer c.Close()

	c.Set("p1", "Arlong")
	c.SetWithTTL("p2", "Kuro", 0)

	clock.Advance(59 * time.Second)
	_, ok := c.Get("p1")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("p1")
	assert.False(t, ok, "expires exactly at ttl")

	c.Set("p3", "Buggy")
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, c.RemoveExpired())
	_, ok = c.Get("p2")
	assert.True(t, ok, "zero ttl never expires")
}

func TestLRUDeleteAndClose(t *testing.T) {
	c := New[int, int](Config{MaxSize: 4, CleanupInterval: 10 * time.Millisecond})
	c.Set(1, 1)
	assert.True(t, c.Delete(1))
	assert.False(t, c.Delete(1))
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

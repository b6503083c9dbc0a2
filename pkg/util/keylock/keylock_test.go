package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripedSize(t *testing.T) {
	assert.Equal(t, 1, New(0).Len())
	assert.Equal(t, 64, New(64).Len())
	assert.Equal(t, 128, New(65).Len())
}

func TestStripedSerializesSameKey(t *testing.T) {
	s := New(16)
	counter := map[string]int{}
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.With("player-1", func() error {
				counter["player-1"]++
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 200, counter["player-1"])
}

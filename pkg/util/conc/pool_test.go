package conc

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsTasks(t *testing.T) {
	p, err := NewPool(4, logger.NewNoop())
	require.NoError(t, err)
	defer p.Close()

	var n atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			n.Add(1)
		}))
	}
	wg.Wait()
	assert.EqualValues(t, 50, n.Load())
	assert.Equal(t, 4, p.Cap())
}

func TestPoolSurvivesPanic(t *testing.T) {
	p, err := NewPool(1, logger.NewNoop())
	require.NoError(t, err)
	defer p.Close()

	p.Go(func() { panic("boom") })

	done := make(chan struct{})
	p.Go(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task after panic did not run")
	}
}

func TestPoolGoAfterRelease(t *testing.T) {
	p, err := NewPool(1, logger.NewNoop())
	require.NoError(t, err)
	require.NoError(t, p.Release(0))

	done := make(chan struct{})
	p.Go(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fallback goroutine did not run")
	}
	assert.Error(t, p.Submit(func() {}))
}

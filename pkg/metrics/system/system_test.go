package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	assert.True(t, c.GetStats().UpdatedAt.IsZero())

	c.Start(10 * time.Millisecond)
	c.Start(10 * time.Millisecond)
	defer c.Stop()

	stats := c.GetStats()
	assert.False(t, stats.UpdatedAt.IsZero())
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.MemoryBytes)
	assert.GreaterOrEqual(t, stats.CPUPercent, 0.0)
}

func TestStopIdempotent(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	c.Start(time.Millisecond)
	c.Stop()
	c.Stop()
}

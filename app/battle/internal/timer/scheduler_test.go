package timer

import (
	"context"
	"testing"
	"time"

	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/lk2023060901/grandline/pkg/util/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleOnceFiresWithPayload(t *testing.T) {
	pool, err := conc.NewPool(2, logger.NewNoop())
	require.NoError(t, err)
	defer pool.Close()

	s := NewScheduler(pool, logger.NewNoop())
	defer s.Close()

	got := make(chan Payload, 1)
	s.Bind(func(_ context.Context, p Payload) { got <- p })

	at := time.Now()
	s.ScheduleOnce(10*time.Millisecond, Payload{SessionID: "1_2", LastMoveAt: at})

	select {
	case p := <-got:
		assert.Equal(t, "1_2", p.SessionID)
		assert.True(t, p.LastMoveAt.Equal(at))
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestCloseStopsPendingTimers(t *testing.T) {
	s := NewScheduler(nil, logger.NewNoop())

	fired := make(chan struct{}, 1)
	s.Bind(func(context.Context, Payload) { fired <- struct{}{} })
	s.ScheduleOnce(50*time.Millisecond, Payload{SessionID: "a"})
	assert.Equal(t, 1, s.Pending())

	require.NoError(t, s.Close())
	s.ScheduleOnce(time.Millisecond, Payload{SessionID: "b"})

	select {
	case <-fired:
		t.Fatal("timer fired after close")
	case <-time.After(150 * time.Millisecond):
	}
	assert.Equal(t, 0, s.Pending())
}

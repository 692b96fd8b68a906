package mainloop

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"navcron/pkg/logger"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func runLoop(t *testing.T) (*Loop, *logger.Memory) {
	t.Helper()
	log := logger.NewMemory()
	l := New(log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})
	return l, log
}

func TestLoop_TimeoutRepeatsUntilFalse(t *testing.T) {
	l, _ := runLoop(t)

	var n atomic.Int32
	l.TimeoutAdd(5, func() bool {
		return n.Add(1) < 3
	})

	assert.Eventually(t, func() bool { return n.Load() == 3 }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(3), n.Load())
	assert.Equal(t, 0, l.Pending())
}

func TestLoop_SourceRemove(t *testing.T) {
	l, _ := runLoop(t)

	var n atomic.Int32
	id := l.TimeoutAdd(5, func() bool {
		n.Add(1)
		return true
	})
	assert.Eventually(t, func() bool { return n.Load() >= 1 }, time.Second, time.Millisecond)

	assert.True(t, l.SourceRemove(id))
	assert.False(t, l.SourceRemove(id))

	after := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, n.Load(), after+1)
}

func TestLoop_RemoveFromOwnSource(t *testing.T) {
	l, _ := runLoop(t)

	var n atomic.Int32
	var id uint
	var mu sync.Mutex
	mu.Lock()
	id = l.TimeoutAdd(5, func() bool {
		mu.Lock()
		defer mu.Unlock()
		n.Add(1)
		l.SourceRemove(id)
		return true
	})
	mu.Unlock()

	assert.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
}

func TestLoop_IntervalStartsAfterCallback(t *testing.T) {
	l, _ := runLoop(t)

	const interval = 20 * time.Millisecond
	const work = 30 * time.Millisecond

	var mu sync.Mutex
	var starts []time.Time
	l.TimeoutAdd(uint(interval/time.Millisecond), func() bool {
		mu.Lock()
		starts = append(starts, time.Now())
		done := len(starts) >= 3
		mu.Unlock()
		time.Sleep(work)
		return !done
	})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(starts) >= 3
	}, 2*time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), interval+work)
	}
}

func TestLoop_IdleRunsWhenNothingDue(t *testing.T) {
	l, _ := runLoop(t)

	order := make(chan string, 4)
	l.TimeoutAdd(0, func() bool { order <- "timeout"; return false })
	l.IdleAdd(func() bool { order <- "idle"; return false })

	first := <-order
	second := <-order
	assert.Equal(t, "timeout", first)
	assert.Equal(t, "idle", second)
}

func TestLoop_IdleRepeatsWhileTrue(t *testing.T) {
	l, _ := runLoop(t)

	var n atomic.Int32
	l.IdleAdd(func() bool { return n.Add(1) < 5 })

	assert.Eventually(t, func() bool { return n.Load() == 5 }, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return l.Pending() == 0 }, time.Second, time.Millisecond)
}

func TestLoop_PanicRemovesSource(t *testing.T) {
	l, log := runLoop(t)

	var n atomic.Int32
	l.TimeoutAdd(1, func() bool {
		n.Add(1)
		panic("bad source")
	})

	assert.Eventually(t, func() bool { return log.Count("error", "panicked") == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
}

func TestLoop_RunTwice(t *testing.T) {
	l, _ := runLoop(t)

	assert.Eventually(t, func() bool { return l.running.Load() }, time.Second, time.Millisecond)
	require.ErrorIs(t, l.Run(context.Background()), ErrRunning)
}

func TestLoop_RunStopsOnCancel(t *testing.T) {
	l := New(logger.NewMemory())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, l.Run(ctx), context.DeadlineExceeded)
}

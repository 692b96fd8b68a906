package mainloop

import (
	"github.com/stretchr/testify/assert"
	"sync/atomic"
	"testing"
	"time"
)

func TestTimer_FiresWhileActive(t *testing.T) {
	l, _ := runLoop(t)

	var n atomic.Int32
	tm := l.NewTimer()
	tm.OnTimeout(func() { n.Add(1) })
	tm.Start(5)

	assert.True(t, tm.IsActive())
	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)

	tm.Stop()
	assert.False(t, tm.IsActive())
	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, n.Load(), stopped+1)
}

func TestTimer_StopFromSlot(t *testing.T) {
	l, _ := runLoop(t)

	var n atomic.Int32
	tm := l.NewTimer()
	tm.OnTimeout(func() {
		n.Add(1)
		tm.Stop()
	})
	tm.Start(2)

	assert.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
	assert.Equal(t, 0, l.Pending())
}

func TestTimer_SetIntervalRestarts(t *testing.T) {
	l, _ := runLoop(t)

	var n atomic.Int32
	tm := l.NewTimer()
	tm.OnTimeout(func() { n.Add(1) })
	tm.Start(10_000)
	tm.SetInterval(5)

	assert.Eventually(t, func() bool { return n.Load() >= 2 }, time.Second, time.Millisecond)
	assert.Equal(t, 1, l.Pending())
	tm.Stop()
}

func TestTimer_SetIntervalInactive(t *testing.T) {
	l, _ := runLoop(t)

	tm := l.NewTimer()
	tm.SetInterval(5)
	assert.False(t, tm.IsActive())
	assert.Equal(t, 0, l.Pending())
}

func TestLoop_SingleShot(t *testing.T) {
	l, _ := runLoop(t)

	var n atomic.Int32
	l.SingleShot(0, func() { n.Add(1) })

	assert.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
}

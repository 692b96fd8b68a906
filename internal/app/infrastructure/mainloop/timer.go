package mainloop

import (
	"navcron/internal/app/ports"
	"sync"
)

// Timer emits its timeout slot every interval while active. It is built on
// a loop timeout source that is replaced whenever the timer restarts.
type Timer struct {
	loop *Loop

	mu       sync.Mutex
	slot     func()
	interval int
	source   uint
	active   bool
}

func (l *Loop) NewTimer() ports.NativeTimer {
	return &Timer{loop: l}
}

// SingleShot runs fn once after intervalMs on the loop goroutine.
func (l *Loop) SingleShot(intervalMs int, fn func()) {
	l.TimeoutAdd(uint(max(intervalMs, 0)), func() bool {
		fn()
		return false
	})
}

func (t *Timer) OnTimeout(fn func()) {
	t.mu.Lock()
	t.slot = fn
	t.mu.Unlock()
}

// Start (re)starts the timer with the given interval.
func (t *Timer) Start(intervalMs int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.interval = intervalMs
	t.restartLocked()
}

func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active {
		t.loop.SourceRemove(t.source)
		t.active = false
		t.source = 0
	}
}

// SetInterval changes the interval; an active timer restarts with it.
func (t *Timer) SetInterval(intervalMs int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.interval = intervalMs
	if t.active {
		t.restartLocked()
	}
}

func (t *Timer) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Timer) restartLocked() {
	if t.active {
		t.loop.SourceRemove(t.source)
	}

	var id uint
	id = t.loop.TimeoutAdd(uint(max(t.interval, 0)), func() bool {
		t.mu.Lock()
		live := t.active && t.source == id
		slot := t.slot
		t.mu.Unlock()

		if !live {
			return false
		}
		if slot != nil {
			slot()
		}

		t.mu.Lock()
		defer t.mu.Unlock()
		return t.active && t.source == id
	})
	t.source = id
	t.active = true
}

// Package mainloop is a cooperative single-goroutine event loop with the
// scheduling primitives of a GUI toolkit: numbered idle and timeout sources
// and timer objects. It stands in for the toolkit loop in headless runs.
//
// All source functions run on the goroutine that called Run. Adding or
// removing sources is safe from any goroutine.
package mainloop

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"navcron/pkg/logger"
	"sync"
	"sync/atomic"
	"time"
)

var ErrRunning = errors.New("main loop is already running")

type source struct {
	id       uint
	fn       func() bool
	interval time.Duration
	due      time.Time
	idle     bool
	removed  bool
}

type Loop struct {
	log logger.Logger

	mu      sync.Mutex
	nextID  uint
	sources map[uint]*source
	pending sourceHeap
	idle    []*source

	wake    chan struct{}
	running atomic.Bool
	now     func() time.Time
}

func New(log logger.Logger) *Loop {
	return &Loop{
		log:     log,
		nextID:  1,
		sources: make(map[uint]*source),
		wake:    make(chan struct{}, 1),
		now:     time.Now,
	}
}

// IdleAdd runs fn when no timeout is due. fn is run again on later idle
// passes for as long as it returns true.
func (l *Loop) IdleAdd(fn func() bool) uint {
	l.mu.Lock()
	s := &source{id: l.allocLocked(), fn: fn, idle: true}
	l.sources[s.id] = s
	l.idle = append(l.idle, s)
	l.mu.Unlock()

	l.notify()
	return s.id
}

// TimeoutAdd runs fn every intervalMs milliseconds for as long as it returns
// true. The next interval starts when fn returns.
func (l *Loop) TimeoutAdd(intervalMs uint, fn func() bool) uint {
	interval := time.Duration(intervalMs) * time.Millisecond

	l.mu.Lock()
	s := &source{
		id:       l.allocLocked(),
		fn:       fn,
		interval: interval,
		due:      l.now().Add(interval),
	}
	l.sources[s.id] = s
	heap.Push(&l.pending, s)
	l.mu.Unlock()

	l.notify()
	return s.id
}

// SourceRemove detaches a source. Removing the source that is currently
// running is allowed; it will not be run again.
func (l *Loop) SourceRemove(id uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sources[id]
	if !ok {
		return false
	}
	s.removed = true
	delete(l.sources, id)
	return true
}

// Pending returns the number of attached sources.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sources)
}

// Run dispatches sources until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer l.running.Store(false)

	wait := time.NewTimer(time.Hour)
	defer wait.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s, delay := l.nextSource()
		if s != nil {
			l.dispatch(s)
			continue
		}

		if delay < 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.wake:
			}
			continue
		}

		wait.Reset(delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-wait.C:
		}
	}
}

func (l *Loop) allocLocked() uint {
	id := l.nextID
	l.nextID++
	return id
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// nextSource returns a due timeout, else an idle source, else how long to
// sleep until the earliest timeout (-1 when there is none).
func (l *Loop) nextSource() (*source, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.pending.Len() > 0 && l.pending[0].removed {
		heap.Pop(&l.pending)
	}

	now := l.now()
	if l.pending.Len() > 0 && !l.pending[0].due.After(now) {
		return heap.Pop(&l.pending).(*source), 0
	}

	for len(l.idle) > 0 {
		s := l.idle[0]
		l.idle[0] = nil
		l.idle = l.idle[1:]
		if !s.removed {
			return s, 0
		}
	}

	if l.pending.Len() > 0 {
		return nil, l.pending[0].due.Sub(now)
	}
	return nil, -1
}

func (l *Loop) dispatch(s *source) {
	again := l.call(s)

	l.mu.Lock()
	defer l.mu.Unlock()

	if s.removed {
		return
	}
	if !again {
		s.removed = true
		delete(l.sources, s.id)
		return
	}

	if s.idle {
		l.idle = append(l.idle, s)
		return
	}
	s.due = l.now().Add(s.interval)
	heap.Push(&l.pending, s)
}

func (l *Loop) call(s *source) (again bool) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("main loop source panicked, removing it", fmt.Errorf("%v", r), "source", s.id)
			again = false
		}
	}()
	return s.fn()
}

// Package timer holds the toolkit-independent part of the scheduling
// registry: handle allocation, the table of active timeouts and the fire
// protocol every backend routes native timer events through.
//
// Every module of the application registers recurring work here instead of
// talking to the GUI toolkit directly. That keeps the toolkit replaceable and
// gives one place to see which caller owns which timer, which matters on
// battery-constrained devices where a module with many frequent timers is a
// power problem.
package timer

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Handle identifies a registered timeout. Handles are issued in increasing
// order starting from zero and are never reused by the same registry. The
// counter is 64 bits wide, recycling is not attempted.
type Handle uint64

func (h Handle) String() string {
	return fmt.Sprintf("#%d", uint64(h))
}

// Result is returned by a callback to tell the registry what to do next.
// The zero value is Continue, so a callback with nothing to say keeps firing.
type Result uint8

const (
	Continue Result = iota
	Stop
)

func (r Result) String() string {
	switch r {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	}
	return fmt.Sprintf("result(%d)", uint8(r))
}

// Callback is the unit of work run on every fire with the arguments given at
// registration.
type Callback func(args ...any) Result

var ErrUnknownHandle = errors.New("unknown timer handle")

// Allocator issues handles. Safe for concurrent use.
type Allocator struct {
	next atomic.Uint64
}

func (a *Allocator) Next() Handle {
	return Handle(a.next.Add(1) - 1)
}

// Millis converts an interval to the whole milliseconds native loops work
// with. Negative intervals clamp to zero.
func Millis(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return d.Milliseconds()
}

package timer

import (
	"fmt"
	"navcron/pkg/logger"
	"time"
)

// Observer is notified about everything the dispatcher sees. It runs on the
// goroutine that delivered the fire and must not block.
type Observer interface {
	TimerFired(info Info, took time.Duration, res Result)
	OrphanFire(h Handle)
	UnknownHandle(op string, h Handle)
}

type nopObserver struct{}

func (nopObserver) TimerFired(Info, time.Duration, Result) {}
func (nopObserver) OrphanFire(Handle)                      {}
func (nopObserver) UnknownHandle(string, Handle)           {}

// Dispatcher is the trampoline every backend calls when its native loop
// reports a fire.
type Dispatcher struct {
	log      logger.Logger
	table    *Table
	observer Observer
	now      func() time.Time
}

func NewDispatcher(log logger.Logger, table *Table, observer Observer) *Dispatcher {
	if observer == nil {
		observer = nopObserver{}
	}

	return &Dispatcher{
		log:      log,
		table:    table,
		observer: observer,
		now:      time.Now,
	}
}

// Fire runs the callback registered under h. When the callback returns Stop
// the timer is removed through remove, which also disarms the native timer,
// and Fire reports false so loops that repeat on a boolean stop repeating.
// A fire for a handle that is no longer registered is logged and dropped;
// it happens when a removal races a fire that was already in flight.
func (d *Dispatcher) Fire(h Handle, remove func(Handle)) bool {
	e, ok := d.table.Lookup(h)
	if !ok {
		d.log.Error("unknown timer triggered", nil, "id", uint64(h))
		d.observer.OrphanFire(h)
		return false
	}

	start := d.now()
	res := d.call(h, e)
	took := d.now().Sub(start)

	if info, ok := d.table.markFired(h, start); ok {
		d.observer.TimerFired(info, took, res)
	}

	if res == Stop {
		remove(h)
		return false
	}
	return true
}

// RunIdle runs a one-shot idle callback. Its result is ignored.
func (d *Dispatcher) RunIdle(cb Callback, args []any) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("idle callback panicked", fmt.Errorf("%v", r))
		}
	}()
	cb(args...)
}

// ReportUnknown logs a remove or modify for a handle the table does not hold.
// Callers are expected to track their handles; nothing is returned to them.
func (d *Dispatcher) ReportUnknown(op string, h Handle) {
	d.log.Error(fmt.Sprintf("can't %s timeout, wrong id", op), nil, "id", uint64(h))
	d.observer.UnknownHandle(op, h)
}

func (d *Dispatcher) call(h Handle, e Entry) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("timer callback panicked", fmt.Errorf("%v", r),
				"id", uint64(h), "caller", e.Caller, "description", e.Description)
			res = Continue
		}
	}()
	return e.Callback(e.Args...)
}

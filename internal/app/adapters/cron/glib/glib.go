// Package glib binds the registry to a main loop that schedules numbered
// sources, the way GLib's idle_add/timeout_add/source_remove do.
package glib

import (
	"navcron/internal/app/adapters/metrics"
	"navcron/internal/app/domain/timer"
	"navcron/internal/app/ports"
	"navcron/pkg/logger"
	"time"
)

const Backend = "gtk"

type Cron struct {
	log      logger.Logger
	loop     ports.SourceLoop
	table    *timer.Table
	dispatch *timer.Dispatcher
}

func New(log logger.Logger, loop ports.SourceLoop, observer timer.Observer) *Cron {
	table := timer.NewTable()
	return &Cron{
		log:      log,
		loop:     loop,
		table:    table,
		dispatch: timer.NewDispatcher(log, table, observer),
	}
}

func (c *Cron) Backend() string { return Backend }

func (c *Cron) AddIdle(cb timer.Callback, args ...any) {
	c.loop.IdleAdd(func() bool {
		c.dispatch.RunIdle(cb, args)
		return false
	})
	metrics.IdleCallbacks.WithLabelValues(Backend).Inc()
}

// AddTimeout arms a repeating source. The loop re-arms it only after the
// source function returns, so consecutive fires are interval plus the time
// the callback took.
func (c *Cron) AddTimeout(cb timer.Callback, interval time.Duration, caller, description string, args ...any) timer.Handle {
	h := c.table.Register(&timer.Entry{
		Callback:    cb,
		Args:        args,
		Interval:    interval,
		Caller:      caller,
		Description: description,
	}, func(h timer.Handle) any {
		return c.arm(h, interval)
	})

	c.log.Debug("gtk: timeout added", "id", uint64(h), "interval", interval, "caller", caller)
	metrics.ActiveTimers.WithLabelValues(Backend).Set(float64(c.table.Len()))
	return h
}

func (c *Cron) RemoveTimeout(h timer.Handle) {
	err := c.table.Remove(h, func(e *timer.Entry) {
		c.loop.SourceRemove(e.Native.(uint))
	})
	if err != nil {
		c.dispatch.ReportUnknown("remove", h)
		return
	}

	metrics.ActiveTimers.WithLabelValues(Backend).Set(float64(c.table.Len()))
}

// ModifyTimeout replaces the native source, since a GLib source cannot change
// its interval once attached. The handle stays the same.
func (c *Cron) ModifyTimeout(h timer.Handle, interval time.Duration) {
	err := c.table.Update(h, func(e *timer.Entry) {
		c.loop.SourceRemove(e.Native.(uint))
		e.Native = c.arm(h, interval)
		e.Interval = interval
	})
	if err != nil {
		c.dispatch.ReportUnknown("modify", h)
	}
}

func (c *Cron) Timers() []timer.Info {
	return c.table.Snapshot()
}

func (c *Cron) arm(h timer.Handle, interval time.Duration) uint {
	return c.loop.TimeoutAdd(uint(timer.Millis(interval)), func() bool {
		return c.dispatch.Fire(h, c.RemoveTimeout)
	})
}

// Package qtimer binds the registry to a toolkit that hands out timer
// objects, one per timeout, in the manner of QTimer.
package qtimer

import (
	"navcron/internal/app/adapters/metrics"
	"navcron/internal/app/domain/timer"
	"navcron/internal/app/ports"
	"navcron/pkg/logger"
	"time"
)

const Backend = "qml"

type Cron struct {
	log      logger.Logger
	timers   ports.TimerFactory
	table    *timer.Table
	dispatch *timer.Dispatcher
}

func New(log logger.Logger, timers ports.TimerFactory, observer timer.Observer) *Cron {
	table := timer.NewTable()
	return &Cron{
		log:      log,
		timers:   timers,
		table:    table,
		dispatch: timer.NewDispatcher(log, table, observer),
	}
}

func (c *Cron) Backend() string { return Backend }

// AddIdle uses a zero-interval single shot, which the toolkit runs once its
// event queue is drained.
func (c *Cron) AddIdle(cb timer.Callback, args ...any) {
	c.timers.SingleShot(0, func() {
		c.dispatch.RunIdle(cb, args)
	})
	metrics.IdleCallbacks.WithLabelValues(Backend).Inc()
}

func (c *Cron) AddTimeout(cb timer.Callback, interval time.Duration, caller, description string, args ...any) timer.Handle {
	h := c.table.Register(&timer.Entry{
		Callback:    cb,
		Args:        args,
		Interval:    interval,
		Caller:      caller,
		Description: description,
	}, func(h timer.Handle) any {
		t := c.timers.NewTimer()
		t.OnTimeout(func() {
			c.dispatch.Fire(h, c.RemoveTimeout)
		})
		t.Start(int(timer.Millis(interval)))
		return t
	})

	c.log.Debug("qml: timeout added", "id", uint64(h), "interval", interval, "caller", caller)
	metrics.ActiveTimers.WithLabelValues(Backend).Set(float64(c.table.Len()))
	return h
}

func (c *Cron) RemoveTimeout(h timer.Handle) {
	err := c.table.Remove(h, func(e *timer.Entry) {
		e.Native.(ports.NativeTimer).Stop()
	})
	if err != nil {
		c.dispatch.ReportUnknown("remove", h)
		return
	}

	metrics.ActiveTimers.WithLabelValues(Backend).Set(float64(c.table.Len()))
}

func (c *Cron) ModifyTimeout(h timer.Handle, interval time.Duration) {
	err := c.table.Update(h, func(e *timer.Entry) {
		e.Native.(ports.NativeTimer).SetInterval(int(timer.Millis(interval)))
		e.Interval = interval
	})
	if err != nil {
		c.dispatch.ReportUnknown("modify", h)
	}
}

func (c *Cron) Timers() []timer.Info {
	return c.table.Snapshot()
}

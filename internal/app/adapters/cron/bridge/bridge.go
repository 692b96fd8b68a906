// Package bridge binds the registry to a declarative UI runtime that owns
// the real timers. The runtime is reachable only through a one-way message
// channel; fires come back later as TimerTriggered calls.
package bridge

import (
	"navcron/internal/app/adapters/metrics"
	"navcron/internal/app/domain/timer"
	"navcron/internal/app/ports"
	"navcron/pkg/logger"
	"time"
)

const Backend = "qt5"

type Cron struct {
	log      logger.Logger
	channel  ports.BridgeChannel
	table    *timer.Table
	dispatch *timer.Dispatcher
}

func New(log logger.Logger, channel ports.BridgeChannel, observer timer.Observer) *Cron {
	table := timer.NewTable()
	return &Cron{
		log:      log,
		channel:  channel,
		table:    table,
		dispatch: timer.NewDispatcher(log, table, observer),
	}
}

func (c *Cron) Backend() string { return Backend }

// AddIdle cannot be expressed over the bridge and does nothing.
func (c *Cron) AddIdle(timer.Callback, ...any) {
	c.log.Debug("qt5: idle callbacks are not supported, dropped")
}

// AddTimeout sends addTimer while the table lock is held so the runtime sees
// add and remove for one handle in order.
func (c *Cron) AddTimeout(cb timer.Callback, interval time.Duration, caller, description string, args ...any) timer.Handle {
	h := c.table.Register(&timer.Entry{
		Callback:    cb,
		Args:        args,
		Interval:    interval,
		Caller:      caller,
		Description: description,
	}, func(h timer.Handle) any {
		c.send(timer.AddTimer(h, timer.Millis(interval)))
		return nil
	})

	c.log.Debug("qt5: adding a timeout", "id", uint64(h), "interval", interval, "caller", caller)
	metrics.ActiveTimers.WithLabelValues(Backend).Set(float64(c.table.Len()))
	return h
}

func (c *Cron) RemoveTimeout(h timer.Handle) {
	var caller string
	err := c.table.Remove(h, func(e *timer.Entry) {
		caller = e.Caller
		c.send(timer.RemoveTimer(h))
	})
	if err != nil {
		c.dispatch.ReportUnknown("remove", h)
		return
	}

	c.log.Debug("qt5: timeout has been removed", "id", uint64(h), "caller", caller)
	metrics.ActiveTimers.WithLabelValues(Backend).Set(float64(c.table.Len()))
}

func (c *Cron) ModifyTimeout(h timer.Handle, interval time.Duration) {
	err := c.table.Update(h, func(e *timer.Entry) {
		e.Interval = interval
		c.send(timer.ModifyTimerTimeout(h, timer.Millis(interval)))
	})
	if err != nil {
		c.dispatch.ReportUnknown("modify", h)
	}
}

// TimerTriggered handles a fire reported by the runtime. A fire for a handle
// removed after the runtime already queued it is logged and ignored.
func (c *Cron) TimerTriggered(h timer.Handle) {
	c.dispatch.Fire(h, c.RemoveTimeout)
}

// Resync brings a runtime that has just attached up to date. It starts with
// no timers, so messages still queued for the previous runtime are dropped
// and addTimer is resent for every live timer.
func (c *Cron) Resync() {
	replayed := 0
	c.table.Replay(func() {
		if dropped := c.channel.Discard(); dropped > 0 {
			c.log.Debug("qt5: dropped bridge messages queued for the previous runtime", "count", dropped)
		}
	}, func(h timer.Handle, e *timer.Entry) {
		c.send(timer.AddTimer(h, timer.Millis(e.Interval)))
		replayed++
	})

	c.log.Info("qt5: runtime attached", "timers", replayed)
}

func (c *Cron) Timers() []timer.Info {
	return c.table.Snapshot()
}

func (c *Cron) send(msg timer.BridgeMessage) {
	if err := c.channel.Send(msg); err != nil {
		c.log.Error("qt5: failed to send bridge message", err, "type", msg.Type, "id", uint64(msg.Handle))
		return
	}
	metrics.BridgeMessages.WithLabelValues("out", msg.Type).Inc()
}

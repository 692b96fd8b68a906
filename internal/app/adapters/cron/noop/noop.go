// Package noop is the registry used when no supported toolkit is active.
// Every operation is safe to call and does nothing; handles are still unique.
package noop

import (
	"navcron/internal/app/domain/timer"
	"time"
)

const Backend = "none"

type Cron struct {
	ids timer.Allocator
}

func New() *Cron {
	return &Cron{}
}

func (c *Cron) Backend() string { return Backend }

func (c *Cron) AddIdle(timer.Callback, ...any) {}

func (c *Cron) AddTimeout(timer.Callback, time.Duration, string, string, ...any) timer.Handle {
	return c.ids.Next()
}

func (c *Cron) RemoveTimeout(timer.Handle) {}

func (c *Cron) ModifyTimeout(timer.Handle, time.Duration) {}

func (c *Cron) Timers() []timer.Info { return []timer.Info{} }

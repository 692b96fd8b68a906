package ports

import (
	"navcron/internal/app/domain/timer"
	"time"
)

// CronPort is the scheduling surface every module uses. Implementations are
// bound to one native event loop for the lifetime of the process.
type CronPort interface {
	Backend() string

	AddIdle(cb timer.Callback, args ...any)
	AddTimeout(cb timer.Callback, interval time.Duration, caller, description string, args ...any) timer.Handle
	RemoveTimeout(h timer.Handle)
	ModifyTimeout(h timer.Handle, interval time.Duration)

	Timers() []timer.Info
}

// TriggerPort is the inbound side of a registry whose timers live in a UI
// runtime: fires come back through TimerTriggered, and Resync replays every
// live timer to a runtime that has just attached.
type TriggerPort interface {
	TimerTriggered(h timer.Handle)
	Resync()
}

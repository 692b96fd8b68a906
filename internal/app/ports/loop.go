package ports

// SourceLoop is a main loop driven by numbered sources, GLib style. A source
// function returning true is kept and run again; false removes it.
type SourceLoop interface {
	IdleAdd(fn func() bool) uint
	TimeoutAdd(intervalMs uint, fn func() bool) uint
	SourceRemove(id uint) bool
}

// NativeTimer is a toolkit timer object that emits timeout every interval
// while started.
type NativeTimer interface {
	OnTimeout(fn func())
	Start(intervalMs int)
	Stop()
	SetInterval(intervalMs int)
	IsActive() bool
}

type TimerFactory interface {
	NewTimer() NativeTimer
	SingleShot(intervalMs int, fn func())
}

package timer

import "time"

// Entry is one active registration. Callback, Args, Caller and Description
// never change after registration; Interval and Native are updated under the
// table lock by ModifyTimeout.
type Entry struct {
	Callback    Callback
	Args        []any
	Interval    time.Duration
	Caller      string
	Description string

	// Native belongs to the backend that armed the timer: a source id, a
	// timer object, or nothing for message-driven backends.
	Native any

	Registered time.Time
	fires      uint64
	lastFire   time.Time
}

// Info is the diagnostic view of an Entry.
type Info struct {
	Handle      Handle        `json:"handle"`
	Interval    time.Duration `json:"interval"`
	Caller      string        `json:"caller"`
	Description string        `json:"description"`
	Registered  time.Time     `json:"registered"`
	Fires       uint64        `json:"fires"`
	LastFire    time.Time     `json:"last_fire,omitzero"`
}

func (e *Entry) info(h Handle) Info {
	return Info{
		Handle:      h,
		Interval:    e.Interval,
		Caller:      e.Caller,
		Description: e.Description,
		Registered:  e.Registered,
		Fires:       e.fires,
		LastFire:    e.lastFire,
	}
}

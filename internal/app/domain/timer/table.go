package timer

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Table maps handles to active entries. One mutex covers every read and
// write; lookup-then-mutate sequences run under a single hold. The table lock
// is never held while a user callback runs.
type Table struct {
	mu      sync.Mutex
	ids     Allocator
	entries map[Handle]*Entry
	now     func() time.Time
}

func NewTable() *Table {
	return &Table{
		entries: make(map[Handle]*Entry),
		now:     time.Now,
	}
}

// Register allocates a handle, lets arm schedule the native timer for it and
// stores the entry, all under the lock. A native fire that races the
// registration blocks in Lookup until the entry is visible.
func (t *Table) Register(e *Entry, arm func(h Handle) any) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.ids.Next()
	e.Registered = t.now()
	if arm != nil {
		e.Native = arm(h)
	}
	t.entries[h] = e
	return h
}

// Lookup returns a copy of the entry for h.
func (t *Table) Lookup(h Handle) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[h]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Remove deletes h and hands the removed entry to release while still
// holding the lock, so the native timer is disarmed before anyone can
// observe the handle as gone.
func (t *Table) Remove(h Handle, release func(e *Entry)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[h]
	if !ok {
		return fmt.Errorf("remove %s: %w", h, ErrUnknownHandle)
	}
	delete(t.entries, h)
	if release != nil {
		release(e)
	}
	return nil
}

// Update runs modify on the live entry for h under the lock.
func (t *Table) Update(h Handle, modify func(e *Entry)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[h]
	if !ok {
		return fmt.Errorf("modify %s: %w", h, ErrUnknownHandle)
	}
	modify(e)
	return nil
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Snapshot returns the diagnostic view of every entry ordered by handle.
func (t *Table) Snapshot() []Info {
	t.mu.Lock()
	out := make([]Info, 0, len(t.entries))
	for h, e := range t.entries {
		out = append(out, e.info(h))
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// Replay runs reset and then fn for every entry in handle order, all under
// one lock hold, so no register, remove or modify can interleave. Neither may
// call back into the table.
func (t *Table) Replay(reset func(), fn func(h Handle, e *Entry)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if reset != nil {
		reset()
	}

	handles := make([]Handle, 0, len(t.entries))
	for h := range t.entries {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	for _, h := range handles {
		fn(h, t.entries[h])
	}
}

// markFired records a completed fire and returns the updated view. The entry
// may already be gone if the callback removed itself.
func (t *Table) markFired(h Handle, at time.Time) (Info, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[h]
	if !ok {
		return Info{}, false
	}
	e.fires++
	e.lastFire = at
	return e.info(h), true
}

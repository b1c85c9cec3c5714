// Package quota implements the fixed-window counter used for admission
// control, as a pure step function plus a process-local table.
//
// A window opens on the first admitted call and closes windowEnd later. Two
// adjacent windows can together admit 2x limit inside a span of one window;
// that boundary burst is accepted policy for fixed windows
package quota

import (
	"sync"
	"time"
)

// Entry is one identifier's counter
type Entry struct {
	Count       int
	WindowStart time.Time
	WindowEnd   time.Time
}

// Expired reports whether e no longer counts at now. The window is inclusive
// of its end instant
func (e Entry) Expired(now time.Time) bool { return now.After(e.WindowEnd) }

// Decision is the outcome of one admission attempt
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Step applies one admission attempt to the current entry (ok=false when
// absent) and returns the entry to store plus the decision. A non-positive
// limit or window denies without opening a window
func Step(cur Entry, ok bool, limit int, window time.Duration, now time.Time) (Entry, Decision) {
	if limit <= 0 || window <= 0 {
		return cur, Decision{Allowed: false, Limit: max(limit, 0), Remaining: 0, ResetAt: now}
	}
	if !ok || cur.Expired(now) {
		next := Entry{Count: 1, WindowStart: now, WindowEnd: now.Add(window)}
		return next, Decision{Allowed: true, Limit: limit, Remaining: limit - 1, ResetAt: next.WindowEnd}
	}
	if cur.Count < limit {
		cur.Count++
		return cur, Decision{Allowed: true, Limit: limit, Remaining: limit - cur.Count, ResetAt: cur.WindowEnd}
	}
	return cur, Decision{Allowed: false, Limit: limit, Remaining: 0, ResetAt: cur.WindowEnd}
}

// Peek reports the state an identifier would see without consuming anything.
// With no live window the caller has the full limit and the reset is one
// window from now
func Peek(cur Entry, ok bool, limit int, window time.Duration, now time.Time) Decision {
	if !ok || cur.Expired(now) {
		return Decision{Allowed: limit > 0, Limit: limit, Remaining: max(limit, 0), ResetAt: now.Add(window)}
	}
	rem := max(limit-cur.Count, 0)
	return Decision{Allowed: rem > 0, Limit: limit, Remaining: rem, ResetAt: cur.WindowEnd}
}

// Table is a mutex-guarded in-memory counter set. Handlers run on many
// goroutines at once, so unlike a single-threaded loop it needs the lock; the
// lock is never held across I/O
type Table struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewTable returns an empty table
func NewTable() *Table {
	return &Table{entries: make(map[string]Entry)}
}

// Admit runs Step against the stored entry for id
func (t *Table) Admit(id string, limit int, window time.Duration, now time.Time) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.entries[id]
	next, d := Step(cur, ok, limit, window, now)
	if d.Allowed {
		t.entries[id] = next
	}
	return d
}

// Status runs Peek against the stored entry for id
func (t *Table) Status(id string, limit int, window time.Duration, now time.Time) Decision {
	t.mu.Lock()
	cur, ok := t.entries[id]
	t.mu.Unlock()
	return Peek(cur, ok, limit, window, now)
}

// Sweep drops entries whose window has closed and returns how many it removed
func (t *Table) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for id, e := range t.entries {
		if e.Expired(now) {
			delete(t.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of live or not-yet-swept entries
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

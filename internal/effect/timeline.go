package effect

import (
	"sort"
	"time"
)

// Timeline is a tiny scheduler of deferred actions, polled once per tick.
// Actions due at the same instant run in scheduling order.
type Timeline struct {
	entries []timelineEntry
	seq     uint64
}

type timelineEntry struct {
	at  time.Time
	seq uint64
	fn  func(now time.Time)
}

// At schedules fn to run on the first Poll at or after at.
func (t *Timeline) At(at time.Time, fn func(now time.Time)) {
	t.seq++
	e := timelineEntry{at: at, seq: t.seq, fn: fn}
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].at.After(at)
	})
	t.entries = append(t.entries, timelineEntry{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = e
}

// Poll runs every action due at now, including actions scheduled by other
// actions during the poll, and returns how many ran.
func (t *Timeline) Poll(now time.Time) int {
	ran := 0
	for len(t.entries) > 0 && !t.entries[0].at.After(now) {
		e := t.entries[0]
		t.entries = t.entries[1:]
		e.fn(now)
		ran++
	}
	return ran
}

// Clear drops every pending action.
func (t *Timeline) Clear() {
	t.entries = nil
}

// Len returns the number of pending actions.
func (t *Timeline) Len() int {
	return len(t.entries)
}

// Next returns the time of the earliest pending action.
func (t *Timeline) Next() (time.Time, bool) {
	if len(t.entries) == 0 {
		return time.Time{}, false
	}
	return t.entries[0].at, true
}

package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/hand"
)

const frame = time.Second / 60

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// ticker drives a detector at 60Hz and records every event.
type ticker struct {
	d      Detector
	src    hand.Source
	now    time.Time
	events []Event
}

func newTicker(d Detector, src hand.Source) *ticker {
	return &ticker{d: d, src: src, now: epoch}
}

// run ticks for dur, calling before (if non-nil) ahead of each tick with the
// elapsed time since the ticker was created.
func (tk *ticker) run(dur time.Duration, before func(elapsed time.Duration)) {
	end := tk.now.Add(dur)
	for tk.now.Before(end) {
		if before != nil {
			before(tk.now.Sub(epoch))
		}
		tk.events = append(tk.events, tk.d.Update(tk.src, tk.now)...)
		tk.now = tk.now.Add(frame)
	}
}

func (tk *ticker) count(phase Phase) int {
	n := 0
	for _, ev := range tk.events {
		if ev.Phase == phase {
			n++
		}
	}
	return n
}

func (tk *ticker) first(phase Phase) (Event, bool) {
	for _, ev := range tk.events {
		if ev.Phase == phase {
			return ev, true
		}
	}
	return Event{}, false
}

func trackedMock(side hand.Side) *hand.MockSource {
	m := hand.NewMockSource()
	m.SetTracked(side, true)
	return m
}

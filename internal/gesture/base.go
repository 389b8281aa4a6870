package gesture

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/vecmath"
)

// reading is the instantaneous, undebounced result for one hand.
type reading struct {
	active     bool
	confidence float64
	intensity  float64
	position   r3.Vec
	direction  r3.Vec
}

type handState struct {
	pending      bool
	pendingSince time.Time
	active       bool
	since        time.Time
	last         reading
}

// base implements the debounce shared by all detectors. Concrete detectors
// supply a read function computing the raw condition and a clear function
// dropping their own per-hand buffers.
type base struct {
	Callbacks

	kind      Kind
	stability time.Duration
	hands     [2]handState
	current   hand.Side
	log       *logging.Logger
}

func newBase(kind Kind, stability time.Duration) base {
	if stability < 0 {
		stability = 0
	}
	return base{kind: kind, stability: stability, current: hand.Right}
}

// Kind returns the gesture kind.
func (b *base) Kind() Kind { return b.kind }

// SetLogger attaches a logger for lifecycle debug lines.
func (b *base) SetLogger(l *logging.Logger) {
	b.log = l.With("gesture", b.kind.String())
}

// Status returns the state of side.
func (b *base) Status(side hand.Side) Status {
	if side != hand.Left && side != hand.Right {
		return Status{Hand: side}
	}
	h := &b.hands[side]
	st := Status{
		Detected:   h.active,
		Confidence: h.last.confidence,
		Intensity:  h.last.intensity,
		Position:   h.last.position,
		Direction:  h.last.direction,
		Hand:       side,
	}
	if h.active {
		st.Since = h.since
	}
	return st
}

// Current returns the most recently activated hand that is still active,
// falling back to the most recently activated hand.
func (b *base) Current() Status {
	cur := b.Status(b.current)
	if cur.Detected {
		return cur
	}
	for _, side := range hand.Sides {
		if st := b.Status(side); st.Detected {
			return st
		}
	}
	return cur
}

func (b *base) resetHands() {
	b.hands = [2]handState{}
}

// update runs one tick for both hands.
func (b *base) update(
	src hand.Source,
	now time.Time,
	read func(src hand.Source, side hand.Side, now time.Time) reading,
	clear func(side hand.Side),
) []Event {
	var events []Event
	for _, side := range hand.Sides {
		if !hand.Tracked(src, side) {
			clear(side)
			if ev, ok := b.drop(side, now); ok {
				events = append(events, ev)
			}
			continue
		}
		if ev, ok := b.step(side, read(src, side, now), now); ok {
			events = append(events, ev)
		}
	}
	return events
}

// step applies the debounce to an instantaneous reading.
func (b *base) step(side hand.Side, r reading, now time.Time) (Event, bool) {
	r.confidence = vecmath.Clamp01(r.confidence)
	r.intensity = vecmath.Clamp01(r.intensity)

	h := &b.hands[side]
	if !r.active {
		h.pending = false
		wasActive := h.active
		h.last = r
		if !wasActive {
			return Event{}, false
		}
		return b.release(side, r, now), true
	}

	if h.active {
		h.last = r
		return b.event(Continuing, side, r, now), true
	}

	if !h.pending {
		h.pending = true
		h.pendingSince = now
	}
	h.last = r
	if now.Sub(h.pendingSince) < b.stability {
		return Event{}, false
	}

	h.pending = false
	h.active = true
	h.since = now
	b.current = side
	ev := b.event(Started, side, r, now)
	b.log.Debug("gesture started", "hand", side.String(), "confidence", r.confidence)
	if b.OnDetected != nil {
		b.OnDetected(ev)
	}
	return ev, true
}

// drop handles an untracked hand: any active gesture is released at its last
// known pose and the reading is zeroed.
func (b *base) drop(side hand.Side, now time.Time) (Event, bool) {
	h := &b.hands[side]
	last := h.last
	wasActive := h.active
	*h = handState{}
	if !wasActive {
		return Event{}, false
	}
	return b.release(side, reading{position: last.position, direction: last.direction}, now), true
}

func (b *base) release(side hand.Side, r reading, now time.Time) Event {
	h := &b.hands[side]
	h.active = false
	h.since = time.Time{}
	ev := b.event(Released, side, r, now)
	ev.Confidence = 0
	ev.Intensity = 0
	b.log.Debug("gesture released", "hand", side.String())
	if b.OnReleased != nil {
		b.OnReleased(ev)
	}
	return ev
}

func (b *base) event(phase Phase, side hand.Side, r reading, now time.Time) Event {
	return Event{
		Kind:       b.kind,
		Phase:      phase,
		Position:   r.position,
		Direction:  r.direction,
		Confidence: r.confidence,
		Intensity:  r.intensity,
		Hand:       side,
		Time:       now,
	}
}

type sample struct {
	pos r3.Vec
	at  time.Time
}

// window is a time-bounded, timestamp-ordered buffer of wrist samples.
type window struct {
	span    time.Duration
	samples []sample
}

// push appends a sample and evicts everything older than span. A timestamp
// earlier than the newest sample restarts the buffer.
func (w *window) push(pos r3.Vec, at time.Time) {
	if n := len(w.samples); n > 0 && at.Before(w.samples[n-1].at) {
		w.samples = w.samples[:0]
	}
	w.samples = append(w.samples, sample{pos: pos, at: at})

	cutoff := at.Add(-w.span)
	drop := 0
	for drop < len(w.samples) && w.samples[drop].at.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		w.samples = append(w.samples[:0], w.samples[drop:]...)
	}
}

func (w *window) clear() {
	w.samples = w.samples[:0]
}

func (w *window) len() int {
	return len(w.samples)
}

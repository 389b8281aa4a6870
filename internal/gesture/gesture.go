// Package gesture turns the per-frame hand signal into discrete gesture
// events. Each detector keeps independent state for both hands and applies
// an asymmetric debounce: a start is confirmed only after the raw condition
// has held for the detector's stability window, a stop is emitted as soon as
// it fails.
package gesture

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
)

// Kind identifies a gesture.
type Kind int

const (
	Pinch Kind = iota
	Tap
	Point
	OpenPalm
	Wave
)

// Kinds lists every gesture kind in detector order.
var Kinds = []Kind{Pinch, Tap, Point, OpenPalm, Wave}

var kindNames = map[Kind]string{
	Pinch:    "pinch",
	Tap:      "tap",
	Point:    "point",
	OpenPalm: "open_palm",
	Wave:     "wave",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses a gesture name such as "pinch" or "open_palm".
// Hyphens and case are ignored.
func ParseKind(s string) (Kind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if norm == "openpalm" {
		norm = "open_palm"
	}
	for k, name := range kindNames {
		if name == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown gesture kind %q", s)
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Phase is the lifecycle position of an event.
type Phase int

const (
	Started Phase = iota
	Continuing
	Released
)

func (p Phase) String() string {
	switch p {
	case Started:
		return "started"
	case Continuing:
		return "continuing"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Event is a single detector output. It is a value and never mutated after
// construction.
type Event struct {
	Kind       Kind
	Phase      Phase
	Position   r3.Vec
	Direction  r3.Vec
	Confidence float64
	Intensity  float64
	Hand       hand.Side
	Time       time.Time
}

// Status is the queryable state of one hand inside a detector.
type Status struct {
	Detected   bool
	Confidence float64
	Intensity  float64
	Position   r3.Vec
	Direction  r3.Vec
	Hand       hand.Side
	// Since is when the current activation was confirmed. Zero when idle.
	Since time.Time
}

// Event builds a Continuing event from the status.
func (s Status) Event(kind Kind, now time.Time) Event {
	return Event{
		Kind:       kind,
		Phase:      Continuing,
		Position:   s.Position,
		Direction:  s.Direction,
		Confidence: s.Confidence,
		Intensity:  s.Intensity,
		Hand:       s.Hand,
		Time:       now,
	}
}

// Detector is implemented by every gesture detector.
type Detector interface {
	Kind() Kind
	// Update advances both hands by one tick and returns the events emitted,
	// at most one per hand. A nil source is treated as both hands untracked.
	Update(src hand.Source, now time.Time) []Event
	Status(side hand.Side) Status
	// Current returns the status of the most recently activated hand.
	Current() Status
	// Reset drops all per-hand state without emitting events.
	Reset()
}

// Callbacks are invoked synchronously from Update.
type Callbacks struct {
	OnDetected func(Event)
	OnReleased func(Event)
}

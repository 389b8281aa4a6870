// Package hand defines the hand-tracking signal consumed by the gesture
// detectors. The tracking runtime is a black box: per hand it reports whether
// the hand is tracked, a curl scalar per finger and a wrist pose.
package hand

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/vecmath"
)

// Side identifies a hand.
type Side int

const (
	// Left is the user's left hand.
	Left Side = iota
	// Right is the user's right hand.
	Right
)

// Sides lists both hands in a fixed order.
var Sides = [2]Side{Left, Right}

// String returns "Left" or "Right".
func (s Side) String() string {
	switch s {
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// ParseSide parses "left"/"right" in any case.
func ParseSide(s string) (Side, error) {
	switch s {
	case "left", "Left", "LEFT", "l", "L":
		return Left, nil
	case "right", "Right", "RIGHT", "r", "R":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown hand %q", s)
}

// Finger identifies a digit.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

// Fingers lists every digit thumb first.
var Fingers = [NumFingers]Finger{Thumb, Index, Middle, Ring, Pinky}

var fingerNames = [NumFingers]string{"thumb", "index", "middle", "ring", "pinky"}

// String returns the lowercase finger name.
func (f Finger) String() string {
	if f < 0 || f >= NumFingers {
		return fmt.Sprintf("Finger(%d)", int(f))
	}
	return fingerNames[f]
}

// ParseFinger parses a lowercase finger name.
func ParseFinger(s string) (Finger, error) {
	for i, name := range fingerNames {
		if name == s {
			return Finger(i), nil
		}
	}
	return 0, fmt.Errorf("unknown finger %q", s)
}

// Pose is a wrist pose in world space. Forward points from the wrist toward
// the knuckles; Up is the back-of-hand normal, so the palm faces -Up.
type Pose struct {
	Position r3.Vec
	Forward  r3.Vec
	Up       r3.Vec
}

// PalmNormal returns the direction the palm faces.
func (p Pose) PalmNormal() r3.Vec {
	return r3.Scale(-1, vecmath.SafeUnit(p.Up, vecmath.Up))
}

// Source is the per-tick hand signal. Implementations must return zero values
// for untracked hands rather than failing.
type Source interface {
	IsTracked(side Side) bool
	// FingerCurl returns 0 for a fully extended finger and 1 for fully curled.
	FingerCurl(side Side, finger Finger) float64
	WristPose(side Side) Pose
}

// PinchSource is implemented by sources that measure pinch strength directly.
type PinchSource interface {
	// PinchStrength returns 0 for an open pinch and 1 for touching tips.
	PinchStrength(side Side) float64
}

// AimSource is implemented by sources that provide a pointer/aim ray.
type AimSource interface {
	AimDirection(side Side) (r3.Vec, bool)
}

// ViewSource is implemented by sources that know the viewer's head position.
type ViewSource interface {
	ViewOrigin() (r3.Vec, bool)
}

// Tracked reports whether src is present and tracks side.
func Tracked(src Source, side Side) bool {
	return src != nil && src.IsTracked(side)
}

// PinchStrength returns the direct pinch measurement when src has one,
// otherwise the index-finger curl.
func PinchStrength(src Source, side Side) float64 {
	if !Tracked(src, side) {
		return 0
	}
	if ps, ok := src.(PinchSource); ok {
		return vecmath.Clamp01(ps.PinchStrength(side))
	}
	return vecmath.Clamp01(src.FingerCurl(side, Index))
}

// Curls returns all five curls for side, zeros when the hand is untracked.
func Curls(src Source, side Side) [NumFingers]float64 {
	var out [NumFingers]float64
	if !Tracked(src, side) {
		return out
	}
	for _, f := range Fingers {
		out[f] = vecmath.Clamp01(src.FingerCurl(side, f))
	}
	return out
}

// Aim returns the aim direction for side when src provides one.
func Aim(src Source, side Side) (r3.Vec, bool) {
	if !Tracked(src, side) {
		return r3.Vec{}, false
	}
	as, ok := src.(AimSource)
	if !ok {
		return r3.Vec{}, false
	}
	dir, ok := as.AimDirection(side)
	if !ok || r3.Norm(dir) == 0 {
		return r3.Vec{}, false
	}
	return r3.Unit(dir), true
}

// ViewOrigin returns the viewer position when src provides one.
func ViewOrigin(src Source) (r3.Vec, bool) {
	if src == nil {
		return r3.Vec{}, false
	}
	vs, ok := src.(ViewSource)
	if !ok {
		return r3.Vec{}, false
	}
	return vs.ViewOrigin()
}

// Package tracking turns camera frames into the hand signal. A Landmarker
// finds 21 MediaPipe-style landmarks per hand; Source maps them into world
// space and derives finger curls, the wrist pose and pinch strength.
package tracking

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/vecmath"
)

// Landmark indices following the MediaPipe hand model.
const (
	Wrist = iota
	ThumbCMC
	ThumbMCP
	ThumbIP
	ThumbTip
	IndexMCP
	IndexPIP
	IndexDIP
	IndexTip
	MiddleMCP
	MiddlePIP
	MiddleDIP
	MiddleTip
	RingMCP
	RingPIP
	RingDIP
	RingTip
	PinkyMCP
	PinkyPIP
	PinkyDIP
	PinkyTip
	NumLandmarks
)

// Pinch distances, in units of hand scale (wrist to middle knuckle).
const (
	PinchClosed = 0.15
	PinchOpen   = 0.6
)

// maxJointBend is the bend at one joint of a fully curled finger.
const maxJointBend = math.Pi / 2

// chains lists each finger's landmarks from its root. Curl is measured at
// the interior joints.
var chains = [hand.NumFingers][]int{
	hand.Thumb:  {ThumbCMC, ThumbMCP, ThumbIP, ThumbTip},
	hand.Index:  {Wrist, IndexMCP, IndexPIP, IndexDIP, IndexTip},
	hand.Middle: {Wrist, MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
	hand.Ring:   {Wrist, RingMCP, RingPIP, RingDIP, RingTip},
	hand.Pinky:  {Wrist, PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
}

// Landmarks is one detected hand. Points are in image space as returned by a
// Landmarker (x, y normalized to [0, 1], y down, z relative depth) or in
// world space after Mapping.ToWorld.
type Landmarks struct {
	Points [NumLandmarks]r3.Vec
	Side   hand.Side
	Score  float64
}

// Scale returns the wrist to middle knuckle distance.
func (l *Landmarks) Scale() float64 {
	return vecmath.Distance(l.Points[Wrist], l.Points[MiddleMCP])
}

// Normalize returns a copy translated so the wrist is at the origin and
// scaled so Scale is 1. A degenerate hand is only translated.
func (l *Landmarks) Normalize() Landmarks {
	out := Landmarks{Side: l.Side, Score: l.Score}
	wrist := l.Points[Wrist]
	for i, p := range l.Points {
		out.Points[i] = r3.Sub(p, wrist)
	}
	s := r3.Norm(out.Points[MiddleMCP])
	if s < 1e-10 {
		return out
	}
	for i, p := range out.Points {
		out.Points[i] = r3.Scale(1/s, p)
	}
	return out
}

// FingerCurl returns the summed joint bend of f relative to a fully curled
// finger: 0 straight, 1 curled.
func (l *Landmarks) FingerCurl(f hand.Finger) float64 {
	if f < 0 || f >= hand.NumFingers {
		return 0
	}
	chain := chains[f]
	var bend float64
	for i := 1; i+1 < len(chain); i++ {
		a := r3.Sub(l.Points[chain[i]], l.Points[chain[i-1]])
		b := r3.Sub(l.Points[chain[i+1]], l.Points[chain[i]])
		if r3.Norm(a) < 1e-10 || r3.Norm(b) < 1e-10 {
			continue
		}
		bend += vecmath.Angle(a, b)
	}
	return vecmath.Clamp01(bend / (float64(len(chain)-2) * maxJointBend))
}

// Curls returns the curl of every finger.
func (l *Landmarks) Curls() [hand.NumFingers]float64 {
	var out [hand.NumFingers]float64
	for _, f := range hand.Fingers {
		out[f] = l.FingerCurl(f)
	}
	return out
}

// WristPose derives the wrist pose. Forward points at the middle knuckle and
// Up is the back-of-hand normal taken from the index and pinky knuckles,
// whose winding depends on the side.
func (l *Landmarks) WristPose() hand.Pose {
	w := l.Points[Wrist]
	fwd := vecmath.SafeUnit(r3.Sub(l.Points[MiddleMCP], w), vecmath.Forward)

	n := r3.Cross(r3.Sub(l.Points[IndexMCP], w), r3.Sub(l.Points[PinkyMCP], w))
	if l.Side == hand.Left {
		n = r3.Scale(-1, n)
	}
	up := r3.Sub(n, r3.Scale(r3.Dot(n, fwd), fwd))
	return hand.Pose{
		Position: w,
		Forward:  fwd,
		Up:       vecmath.SafeUnit(up, vecmath.Up),
	}
}

// PinchStrength maps the thumb to index tip distance onto [0, 1].
func (l *Landmarks) PinchStrength() float64 {
	s := l.Scale()
	if s < 1e-10 {
		return 0
	}
	d := vecmath.Distance(l.Points[ThumbTip], l.Points[IndexTip]) / s
	return vecmath.Clamp01((PinchOpen - d) / (PinchOpen - PinchClosed))
}

// AimDirection is the index finger's knuckle to tip direction.
func (l *Landmarks) AimDirection() (r3.Vec, bool) {
	d := r3.Sub(l.Points[IndexTip], l.Points[IndexMCP])
	if r3.Norm(d) < 1e-10 {
		return r3.Vec{}, false
	}
	return r3.Unit(d), true
}

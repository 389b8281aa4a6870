package tracking

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/vecmath"
)

// DefaultHandSize is the wrist to middle knuckle distance in metres.
const DefaultHandSize = 0.09

type fingerLayout struct {
	forward, lateral float64
	segments         [3]float64
}

// Knuckle placement in hand-size units: forward along the pose and lateral
// toward the thumb.
var layouts = [hand.NumFingers]fingerLayout{
	hand.Thumb:  {forward: 0.2, lateral: 0.25, segments: [3]float64{0.3, 0.25, 0.22}},
	hand.Index:  {forward: 0.95, lateral: 0.25, segments: [3]float64{0.45, 0.28, 0.22}},
	hand.Middle: {forward: 1, lateral: 0, segments: [3]float64{0.48, 0.3, 0.23}},
	hand.Ring:   {forward: 0.92, lateral: -0.22, segments: [3]float64{0.44, 0.28, 0.22}},
	hand.Pinky:  {forward: 0.82, lateral: -0.42, segments: [3]float64{0.35, 0.22, 0.18}},
}

// Synthesize builds world-space landmarks for a hand at pose with the given
// curls. Every bent joint turns by curl*90° toward the palm, so FingerCurl
// on the result recovers curls. size is the wrist to middle knuckle
// distance; non-positive means DefaultHandSize.
func Synthesize(side hand.Side, curls [hand.NumFingers]float64, pose hand.Pose, size float64) Landmarks {
	if size <= 0 {
		size = DefaultHandSize
	}
	f := vecmath.SafeUnit(pose.Forward, vecmath.Forward)
	u := vecmath.SafeUnit(r3.Sub(pose.Up, r3.Scale(r3.Dot(pose.Up, f), f)), vecmath.Up)
	thumbward := r3.Cross(u, f)
	if side == hand.Right {
		thumbward = r3.Scale(-1, thumbward)
	}
	palm := r3.Scale(-1, u)

	l := Landmarks{Side: side, Score: 1}
	w := pose.Position
	l.Points[Wrist] = w
	at := func(fwd, lat float64) r3.Vec {
		return r3.Add(w, r3.Add(r3.Scale(fwd*size, f), r3.Scale(lat*size, thumbward)))
	}

	for _, finger := range []hand.Finger{hand.Index, hand.Middle, hand.Ring, hand.Pinky} {
		lay := layouts[finger]
		chain := chains[finger]
		mcp := at(lay.forward, lay.lateral)
		l.Points[chain[1]] = mcp
		dir := vecmath.SafeUnit(r3.Sub(mcp, w), f)
		l.bend(chain[1:], dir, palm, curls[finger], lay.segments[:], size)
	}

	thumb := layouts[hand.Thumb]
	cmc := at(thumb.forward, thumb.lateral)
	dir := vecmath.SafeUnit(r3.Add(r3.Scale(0.6, f), r3.Scale(0.8, thumbward)), f)
	l.Points[ThumbCMC] = cmc
	l.Points[ThumbMCP] = r3.Add(cmc, r3.Scale(thumb.segments[0]*size, dir))
	l.bend(chains[hand.Thumb][1:], dir, palm, curls[hand.Thumb], thumb.segments[1:], size)
	return l
}

// bend lays out segments from the landmark idx[0], turning dir toward palm
// before each segment.
func (l *Landmarks) bend(idx []int, dir, palm r3.Vec, curl float64, segments []float64, size float64) {
	axis := vecmath.SafeUnit(r3.Cross(dir, palm), vecmath.Right)
	rot := vecmath.AxisAngle(axis, vecmath.Clamp01(curl)*maxJointBend)
	p := l.Points[idx[0]]
	for i, seg := range segments {
		dir = vecmath.Rotate(rot, dir)
		p = r3.Add(p, r3.Scale(seg*size, dir))
		l.Points[idx[i+1]] = p
	}
}

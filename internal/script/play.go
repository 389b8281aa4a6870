package script

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/vecmath"
)

func (w Wave) offset(elapsed time.Duration) r3.Vec {
	if w.Amplitude == 0 || w.Hz <= 0 {
		return r3.Vec{}
	}
	axis := vecmath.SafeUnit(w.Axis, vecmath.Right)
	phase := 2 * math.Pi * w.Hz * vecmath.Seconds(elapsed)
	return r3.Scale(w.Amplitude*math.Sin(phase), axis)
}

// pinchStrength returns the explicit pinch, or the index curl when no
// keyframe has set one.
func (f frame) pinchStrength() float64 {
	if !f.pinchSet {
		return f.curls[hand.Index]
	}
	return f.pinch
}

// interpolate blends a toward b. The tracked flag and wave follow a.
func interpolate(a, b frame, t float64) frame {
	out := a
	for i := range out.curls {
		out.curls[i] = a.curls[i] + (b.curls[i]-a.curls[i])*t
	}
	pa, pb := a.pinchStrength(), b.pinchStrength()
	out.pinch = pa + (pb-pa)*t
	out.pinchSet = a.pinchSet || b.pinchSet
	out.pose.Position = vecmath.Lerp(a.pose.Position, b.pose.Position, t)
	out.pose.Forward = vecmath.SafeUnit(vecmath.Lerp(a.pose.Forward, b.pose.Forward, t), a.pose.Forward)
	out.pose.Up = vecmath.SafeUnit(vecmath.Lerp(a.pose.Up, b.pose.Up, t), a.pose.Up)
	return out
}

// Player evaluates a script at a playback offset. It implements
// hand.Source and hand.PinchSource. Without an explicit pinch keyframe the
// pinch strength follows the index curl.
type Player struct {
	script  *Script
	elapsed time.Duration
	frames  [2]frame
}

// NewPlayer returns a player positioned at zero.
func NewPlayer(s *Script) *Player {
	p := &Player{script: s}
	p.Seek(0)
	return p
}

// Script returns the script being played.
func (p *Player) Script() *Script { return p.script }

// Seek moves playback to offset d.
func (p *Player) Seek(d time.Duration) {
	p.elapsed = d
	for _, side := range hand.Sides {
		p.frames[side] = p.script.at(side, d)
	}
}

// Elapsed returns the current playback offset.
func (p *Player) Elapsed() time.Duration { return p.elapsed }

// Done reports whether playback reached the script duration.
func (p *Player) Done() bool { return p.elapsed >= p.script.Duration }

func (p *Player) frame(side hand.Side) (frame, bool) {
	if side != hand.Left && side != hand.Right {
		return frame{}, false
	}
	f := p.frames[side]
	return f, f.tracked
}

// IsTracked implements hand.Source.
func (p *Player) IsTracked(side hand.Side) bool {
	_, ok := p.frame(side)
	return ok
}

// FingerCurl implements hand.Source.
func (p *Player) FingerCurl(side hand.Side, finger hand.Finger) float64 {
	f, ok := p.frame(side)
	if !ok || finger < 0 || finger >= hand.NumFingers {
		return 0
	}
	return vecmath.Clamp01(f.curls[finger])
}

// WristPose implements hand.Source.
func (p *Player) WristPose(side hand.Side) hand.Pose {
	f, ok := p.frame(side)
	if !ok {
		return hand.Pose{}
	}
	return f.pose
}

// PinchStrength implements hand.PinchSource.
func (p *Player) PinchStrength(side hand.Side) float64 {
	f, ok := p.frame(side)
	if !ok {
		return 0
	}
	return vecmath.Clamp01(f.pinchStrength())
}

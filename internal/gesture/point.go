package gesture

import (
	"math"
	"time"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/vecmath"
)

// PointDetector reports a single extended finger with the rest curled. When
// the source provides an aim ray, the wrist forward direction must also lie
// within AimToleranceDeg of it.
type PointDetector struct {
	base
	cfg PointConfig
}

// NewPoint creates a point detector.
func NewPoint(cfg PointConfig) *PointDetector {
	return &PointDetector{base: newBase(Point, cfg.Stability), cfg: cfg}
}

// Update advances the detector by one tick.
func (d *PointDetector) Update(src hand.Source, now time.Time) []Event {
	return d.update(src, now, d.read, func(hand.Side) {})
}

// Reset drops all per-hand state.
func (d *PointDetector) Reset() { d.resetHands() }

func (d *PointDetector) read(src hand.Source, side hand.Side, _ time.Time) reading {
	curls := hand.Curls(src, side)
	pose := src.WristPose(side)
	forward := vecmath.SafeUnit(pose.Forward, vecmath.Forward)

	extended := curls[d.cfg.Finger] <= d.cfg.ExtendedMax

	curled := true
	minCurl := 1.0
	for _, f := range hand.Fingers {
		if f == d.cfg.Finger || (f == hand.Thumb && !d.cfg.IncludeThumb) {
			continue
		}
		minCurl = math.Min(minCurl, curls[f])
		if curls[f] < d.cfg.CurledMin {
			curled = false
		}
	}

	aligned := true
	alignment := 1.0
	direction := forward
	if aim, ok := hand.Aim(src, side); ok {
		cos := vecmath.CosAngle(forward, aim)
		aligned = cos >= math.Cos(d.cfg.AimToleranceDeg*math.Pi/180)
		alignment = math.Max(0, cos)
		direction = aim
	}

	confidence := (1 - curls[d.cfg.Finger] + minCurl + alignment) / 3
	return reading{
		active:     extended && curled && aligned,
		confidence: confidence,
		intensity:  confidence,
		position:   pose.Position,
		direction:  direction,
	}
}

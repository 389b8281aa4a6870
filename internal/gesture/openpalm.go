package gesture

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/vecmath"
)

var nonThumb = [...]hand.Finger{hand.Index, hand.Middle, hand.Ring, hand.Pinky}

// OpenPalmDetector reports an open hand whose palm faces away from the
// viewer.
type OpenPalmDetector struct {
	base
	cfg OpenPalmConfig
}

// NewOpenPalm creates an open palm detector.
func NewOpenPalm(cfg OpenPalmConfig) *OpenPalmDetector {
	return &OpenPalmDetector{base: newBase(OpenPalm, cfg.Stability), cfg: cfg}
}

// Update advances the detector by one tick.
func (d *OpenPalmDetector) Update(src hand.Source, now time.Time) []Event {
	return d.update(src, now, d.read, func(hand.Side) {})
}

// Reset drops all per-hand state.
func (d *OpenPalmDetector) Reset() { d.resetHands() }

// outward returns the direction the palm must face: away from the viewer
// when the source knows where the viewer is.
func (d *OpenPalmDetector) outward(src hand.Source, wrist r3.Vec) r3.Vec {
	fallback := vecmath.SafeUnit(d.cfg.Outward, vecmath.Forward)
	if origin, ok := hand.ViewOrigin(src); ok {
		return vecmath.SafeUnit(r3.Sub(wrist, origin), fallback)
	}
	return fallback
}

func (d *OpenPalmDetector) read(src hand.Source, side hand.Side, _ time.Time) reading {
	curls := hand.Curls(src, side)
	pose := src.WristPose(side)

	extended := 0
	openness := 0.0
	for _, f := range nonThumb {
		if curls[f] <= d.cfg.ExtendedMax {
			extended++
		}
		openness += 1 - curls[f]
	}
	openness /= float64(len(nonThumb))

	normal := pose.PalmNormal()
	facing := r3.Dot(normal, d.outward(src, pose.Position))
	cosTol := math.Cos(d.cfg.FacingToleranceDeg * math.Pi / 180)

	confidence := (openness + math.Max(0, facing)) / 2
	return reading{
		active:     extended >= d.cfg.MinExtended && facing >= cosTol,
		confidence: confidence,
		intensity:  openness,
		position:   pose.Position,
		direction:  normal,
	}
}

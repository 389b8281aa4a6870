package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/hand"
)

// PinchDetector reports thumb-index pinches with a hysteresis band: a pinch
// starts at ActivateThreshold and holds until strength falls below
// ReleaseThreshold.
type PinchDetector struct {
	base
	cfg PinchConfig
}

// NewPinch creates a pinch detector.
func NewPinch(cfg PinchConfig) *PinchDetector {
	return &PinchDetector{base: newBase(Pinch, cfg.Stability), cfg: cfg}
}

// Update advances the detector by one tick.
func (d *PinchDetector) Update(src hand.Source, now time.Time) []Event {
	return d.update(src, now, d.read, func(hand.Side) {})
}

// Reset drops all per-hand state.
func (d *PinchDetector) Reset() { d.resetHands() }

func (d *PinchDetector) read(src hand.Source, side hand.Side, _ time.Time) reading {
	strength := hand.PinchStrength(src, side)
	pose := src.WristPose(side)

	threshold := d.cfg.ActivateThreshold
	if d.hands[side].active {
		threshold = d.cfg.ReleaseThreshold
	}
	return reading{
		active:     strength >= threshold,
		confidence: strength,
		intensity:  strength,
		position:   pose.Position,
		direction:  pose.Forward,
	}
}

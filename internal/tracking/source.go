package tracking

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
)

// Source is a hand.Source over the latest landmarker output. Update replaces
// the hands every frame; a hand missing from a frame is untracked.
type Source struct {
	mapping  Mapping
	minScore float64

	hands   [2]Landmarks
	curls   [2][hand.NumFingers]float64
	tracked [2]bool
}

// NewSource creates a source mapping image landmarks through m. Hands scoring
// below minScore are ignored.
func NewSource(m Mapping, minScore float64) *Source {
	return &Source{mapping: m, minScore: minScore}
}

// Update replaces the tracked hands with detected, which is in image space.
// When several hands report the same side the highest score wins.
func (s *Source) Update(detected []Landmarks) {
	s.tracked = [2]bool{}
	best := [2]float64{}
	for _, l := range detected {
		if l.Score < s.minScore {
			continue
		}
		w := s.mapping.WorldLandmarks(l)
		side := w.Side
		if side != hand.Left && side != hand.Right {
			continue
		}
		if s.tracked[side] && l.Score <= best[side] {
			continue
		}
		best[side] = l.Score
		s.hands[side] = w
		s.curls[side] = w.Curls()
		s.tracked[side] = true
	}
}

// Clear marks both hands untracked.
func (s *Source) Clear() {
	s.tracked = [2]bool{}
}

// Landmarks returns the world-space landmarks of side.
func (s *Source) Landmarks(side hand.Side) (Landmarks, bool) {
	if !s.IsTracked(side) {
		return Landmarks{}, false
	}
	return s.hands[side], true
}

func (s *Source) IsTracked(side hand.Side) bool {
	return (side == hand.Left || side == hand.Right) && s.tracked[side]
}

func (s *Source) FingerCurl(side hand.Side, finger hand.Finger) float64 {
	if !s.IsTracked(side) || finger < 0 || finger >= hand.NumFingers {
		return 0
	}
	return s.curls[side][finger]
}

func (s *Source) WristPose(side hand.Side) hand.Pose {
	if !s.IsTracked(side) {
		return hand.Pose{}
	}
	return s.hands[side].WristPose()
}

// PinchStrength implements hand.PinchSource.
func (s *Source) PinchStrength(side hand.Side) float64 {
	if !s.IsTracked(side) {
		return 0
	}
	return s.hands[side].PinchStrength()
}

// AimDirection implements hand.AimSource.
func (s *Source) AimDirection(side hand.Side) (r3.Vec, bool) {
	if !s.IsTracked(side) {
		return r3.Vec{}, false
	}
	return s.hands[side].AimDirection()
}

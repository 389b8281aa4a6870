package hand

import "gonum.org/v1/gonum/spatial/r3"

// MockSource is a test implementation of Source and its optional
// capabilities. Tests set per-hand state directly between ticks.
type MockSource struct {
	hands [2]mockHand

	// Optional capabilities answer as absent until enabled by a setter.
	pinchEnabled bool
	aimEnabled   bool
	viewEnabled  bool
	viewOrigin   r3.Vec
}

type mockHand struct {
	tracked bool
	curls   [NumFingers]float64
	pose    Pose
	pinch   float64
	aim     r3.Vec
}

// NewMockSource creates a MockSource with both hands untracked and a wrist
// pose facing forward.
func NewMockSource() *MockSource {
	m := &MockSource{}
	for _, s := range Sides {
		m.hands[s].pose = Pose{Forward: r3.Vec{Z: 1}, Up: r3.Vec{Y: 1}}
	}
	return m
}

func (m *MockSource) hand(side Side) *mockHand {
	if side != Left && side != Right {
		return nil
	}
	return &m.hands[side]
}

// SetTracked sets whether side is tracked.
func (m *MockSource) SetTracked(side Side, tracked bool) {
	if h := m.hand(side); h != nil {
		h.tracked = tracked
	}
}

// SetCurl sets a single finger curl.
func (m *MockSource) SetCurl(side Side, finger Finger, curl float64) {
	if h := m.hand(side); h != nil && finger >= 0 && finger < NumFingers {
		h.curls[finger] = curl
	}
}

// SetCurls sets all five curls, thumb first.
func (m *MockSource) SetCurls(side Side, curls [NumFingers]float64) {
	if h := m.hand(side); h != nil {
		h.curls = curls
	}
}

// SetPose sets the wrist pose.
func (m *MockSource) SetPose(side Side, pose Pose) {
	if h := m.hand(side); h != nil {
		h.pose = pose
	}
}

// SetPosition moves the wrist, keeping its orientation.
func (m *MockSource) SetPosition(side Side, pos r3.Vec) {
	if h := m.hand(side); h != nil {
		h.pose.Position = pos
	}
}

// SetPinch enables the PinchSource capability and sets the strength.
func (m *MockSource) SetPinch(side Side, strength float64) {
	m.pinchEnabled = true
	if h := m.hand(side); h != nil {
		h.pinch = strength
	}
}

// SetAim enables the AimSource capability and sets the aim direction.
func (m *MockSource) SetAim(side Side, dir r3.Vec) {
	m.aimEnabled = true
	if h := m.hand(side); h != nil {
		h.aim = dir
	}
}

// SetViewOrigin enables the ViewSource capability.
func (m *MockSource) SetViewOrigin(origin r3.Vec) {
	m.viewEnabled = true
	m.viewOrigin = origin
}

// IsTracked reports whether side is tracked.
func (m *MockSource) IsTracked(side Side) bool {
	h := m.hand(side)
	return h != nil && h.tracked
}

// FingerCurl returns the configured curl, or 0 when untracked.
func (m *MockSource) FingerCurl(side Side, finger Finger) float64 {
	h := m.hand(side)
	if h == nil || !h.tracked || finger < 0 || finger >= NumFingers {
		return 0
	}
	return h.curls[finger]
}

// WristPose returns the configured pose, or a zero pose when untracked.
func (m *MockSource) WristPose(side Side) Pose {
	h := m.hand(side)
	if h == nil || !h.tracked {
		return Pose{}
	}
	return h.pose
}

// PinchStrength returns the strength set by SetPinch. Until SetPinch is
// called it mirrors the index curl, the same as a source without pinch
// measurement.
func (m *MockSource) PinchStrength(side Side) float64 {
	h := m.hand(side)
	if h == nil || !h.tracked {
		return 0
	}
	if !m.pinchEnabled {
		return h.curls[Index]
	}
	return h.pinch
}

// AimDirection returns the direction set by SetAim.
func (m *MockSource) AimDirection(side Side) (r3.Vec, bool) {
	h := m.hand(side)
	if !m.aimEnabled || h == nil || !h.tracked {
		return r3.Vec{}, false
	}
	return h.aim, true
}

// ViewOrigin returns the origin set by SetViewOrigin.
func (m *MockSource) ViewOrigin() (r3.Vec, bool) {
	return m.viewOrigin, m.viewEnabled
}

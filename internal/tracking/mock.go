package tracking

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockLandmarker is a test implementation of the Landmarker interface.
// It returns the configured hands for every frame.
type MockLandmarker struct {
	mu    sync.Mutex
	hands []Landmarks
	err   error
	calls int
}

// NewMockLandmarker creates a MockLandmarker that detects nothing.
func NewMockLandmarker() *MockLandmarker {
	return &MockLandmarker{}
}

// SetHands sets the hands returned by Detect.
func (m *MockLandmarker) SetHands(hands ...Landmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = append([]Landmarks(nil), hands...)
}

// SetError sets the error returned by Detect.
func (m *MockLandmarker) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns a copy of the configured hands or the configured error.
func (m *MockLandmarker) Detect(*gocv.Mat) ([]Landmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]Landmarks(nil), m.hands...), nil
}

// Calls returns how many times Detect ran.
func (m *MockLandmarker) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockLandmarker) Close() error { return nil }

package tracking

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
)

func TestMapping_RoundTrip(t *testing.T) {
	for _, mirror := range []bool{false, true} {
		m := DefaultMapping()
		m.Mirror = mirror
		for _, p := range []r3.Vec{{X: 0.5, Y: 0.5}, {X: 0.1, Y: 0.9, Z: -0.05}, {X: 1, Y: 0, Z: 0.2}} {
			if diff := cmp.Diff(p, m.ToImage(m.ToWorld(p)), approx); diff != "" {
				t.Errorf("mirror=%v round trip mismatch (-want +got):\n%s", mirror, diff)
			}
		}
	}
}

func TestMapping_ToWorld(t *testing.T) {
	m := DefaultMapping()

	assert.Equal(t, m.Origin, m.ToWorld(r3.Vec{X: 0.5, Y: 0.5}))

	topRight := m.ToWorld(r3.Vec{X: 1, Y: 0})
	assert.InDelta(t, m.Origin.X-m.Width/2, topRight.X, 1e-12, "mirrored image right is world left")
	assert.InDelta(t, m.Origin.Y+m.Height/2, topRight.Y, 1e-12, "image top is world up")

	closer := m.ToWorld(r3.Vec{X: 0.5, Y: 0.5, Z: -0.1})
	assert.Greater(t, closer.Z, m.Origin.Z)

	m.Mirror = false
	assert.InDelta(t, m.Origin.X+m.Width/2, m.ToWorld(r3.Vec{X: 1, Y: 0.5}).X, 1e-12)
}

func TestMapping_Side(t *testing.T) {
	m := DefaultMapping()
	assert.Equal(t, hand.Right, m.Side(hand.Left))
	assert.Equal(t, hand.Left, m.Side(hand.Right))
	m.Mirror = false
	assert.Equal(t, hand.Left, m.Side(hand.Left))
}

func TestMapping_Validate(t *testing.T) {
	assert.NoError(t, DefaultMapping().Validate())
	m := DefaultMapping()
	m.Depth = 0
	assert.Error(t, m.Validate())
}

package hand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// bareSource implements only the required Source methods.
type bareSource struct {
	curl float64
}

func (b bareSource) IsTracked(Side) bool              { return true }
func (b bareSource) FingerCurl(Side, Finger) float64 { return b.curl }
func (b bareSource) WristPose(Side) Pose              { return Pose{} }

func TestParseSide(t *testing.T) {
	side, err := ParseSide("left")
	require.NoError(t, err)
	assert.Equal(t, Left, side)

	side, err = ParseSide("R")
	require.NoError(t, err)
	assert.Equal(t, Right, side)

	_, err = ParseSide("both")
	assert.Error(t, err)
	assert.Equal(t, "Right", Right.String())
}

func TestParseFinger(t *testing.T) {
	for _, f := range Fingers {
		got, err := ParseFinger(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFinger("toe")
	assert.Error(t, err)
}

func TestPinchStrength(t *testing.T) {
	t.Run("nil source", func(t *testing.T) {
		assert.Equal(t, 0.0, PinchStrength(nil, Right))
	})

	t.Run("falls back to index curl", func(t *testing.T) {
		assert.Equal(t, 0.7, PinchStrength(bareSource{curl: 0.7}, Left))
		assert.Equal(t, 1.0, PinchStrength(bareSource{curl: 4}, Left))
	})

	t.Run("uses pinch capability", func(t *testing.T) {
		m := NewMockSource()
		m.SetTracked(Right, true)
		m.SetCurl(Right, Index, 0.2)
		assert.Equal(t, 0.2, PinchStrength(m, Right))

		m.SetPinch(Right, 0.95)
		assert.Equal(t, 0.95, PinchStrength(m, Right))
		assert.Equal(t, 0.0, PinchStrength(m, Left))
	})
}

func TestAimAndView(t *testing.T) {
	m := NewMockSource()
	m.SetTracked(Left, true)

	_, ok := Aim(m, Left)
	assert.False(t, ok)
	_, ok = Aim(bareSource{}, Left)
	assert.False(t, ok)

	m.SetAim(Left, r3.Vec{X: 2})
	dir, ok := Aim(m, Left)
	require.True(t, ok)
	assert.Equal(t, r3.Vec{X: 1}, dir)

	_, ok = ViewOrigin(m)
	assert.False(t, ok)
	m.SetViewOrigin(r3.Vec{Y: 1.6})
	origin, ok := ViewOrigin(m)
	require.True(t, ok)
	assert.Equal(t, 1.6, origin.Y)
}

func TestUntrackedReturnsZeros(t *testing.T) {
	m := NewMockSource()
	m.SetCurls(Right, [NumFingers]float64{1, 1, 1, 1, 1})
	m.SetPosition(Right, r3.Vec{X: 3})

	assert.Equal(t, [NumFingers]float64{}, Curls(m, Right))
	assert.Equal(t, Pose{}, m.WristPose(Right))
	assert.Equal(t, [NumFingers]float64{}, Curls(nil, Right))
}

func TestPalmNormal(t *testing.T) {
	p := Pose{Up: r3.Vec{Y: 2}}
	assert.Equal(t, r3.Vec{Y: -1}, p.PalmNormal())
	assert.Equal(t, r3.Vec{Y: -1}, Pose{}.PalmNormal())
}

package tracking

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
)

// Mapping places the camera image in the world. The image centre at zero
// depth maps to Origin; Width and Height are the world extents of the image
// and Depth scales landmark z. Landmarks closer to the camera move forward.
type Mapping struct {
	Origin r3.Vec  `mapstructure:"origin"`
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	Depth  float64 `mapstructure:"depth"`
	// Mirror flips the image horizontally, as a selfie view does. A mirrored
	// hand changes chirality, so sides are swapped too.
	Mirror bool `mapstructure:"mirror"`
}

// DefaultMapping returns a 64x48cm image plane centred at chest height.
func DefaultMapping() Mapping {
	return Mapping{
		Origin: r3.Vec{Y: 1.2, Z: 0.4},
		Width:  0.64,
		Height: 0.48,
		Depth:  0.64,
		Mirror: true,
	}
}

// Validate checks that every extent is positive.
func (m Mapping) Validate() error {
	if m.Width <= 0 || m.Height <= 0 || m.Depth <= 0 {
		return fmt.Errorf("mapping extents must be positive, got %vx%vx%v", m.Width, m.Height, m.Depth)
	}
	return nil
}

// ToWorld maps an image-space point into world space.
func (m Mapping) ToWorld(p r3.Vec) r3.Vec {
	x := p.X - 0.5
	if m.Mirror {
		x = -x
	}
	return r3.Vec{
		X: m.Origin.X + x*m.Width,
		Y: m.Origin.Y + (0.5-p.Y)*m.Height,
		Z: m.Origin.Z - p.Z*m.Depth,
	}
}

// ToImage is the inverse of ToWorld.
func (m Mapping) ToImage(w r3.Vec) r3.Vec {
	x := (w.X - m.Origin.X) / m.Width
	if m.Mirror {
		x = -x
	}
	return r3.Vec{
		X: x + 0.5,
		Y: 0.5 - (w.Y-m.Origin.Y)/m.Height,
		Z: -(w.Z - m.Origin.Z) / m.Depth,
	}
}

// Side maps a reported side through the mirror.
func (m Mapping) Side(s hand.Side) hand.Side {
	if !m.Mirror {
		return s
	}
	if s == hand.Left {
		return hand.Right
	}
	return hand.Left
}

// WorldLandmarks maps every point of l into world space.
func (m Mapping) WorldLandmarks(l Landmarks) Landmarks {
	out := Landmarks{Side: m.Side(l.Side), Score: l.Score}
	for i, p := range l.Points {
		out.Points[i] = m.ToWorld(p)
	}
	return out
}

// ImageLandmarks maps every point of l into image space.
func (m Mapping) ImageLandmarks(l Landmarks) Landmarks {
	out := Landmarks{Side: m.Side(l.Side), Score: l.Score}
	for i, p := range l.Points {
		out.Points[i] = m.ToImage(p)
	}
	return out
}

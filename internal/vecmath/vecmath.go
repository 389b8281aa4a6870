// Package vecmath holds the small set of 3D helpers shared by detectors and
// effects: smoothing factors, safe normalization, look rotations and slerp
// on top of gonum's r3 vectors and quaternions.
package vecmath

import (
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// World axes. Y is up, Z is forward.
var (
	Up      = r3.Vec{Y: 1}
	Forward = r3.Vec{Z: 1}
	Right   = r3.Vec{X: 1}
	One     = r3.Vec{X: 1, Y: 1, Z: 1}
)

// Identity is the identity rotation.
var Identity = quat.Number{Real: 1}

const epsilon = 1e-9

// Clamp01 clamps v to [0, 1].
func Clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Seconds converts a duration to float seconds.
func Seconds(d time.Duration) float64 {
	return d.Seconds()
}

// Smoothing returns the exponential smoothing factor for a rate (1/s) over
// dt seconds. It is 0 for non-positive inputs and tends to 1 as rate*dt grows.
func Smoothing(rate, dt float64) float64 {
	if rate <= 0 || dt <= 0 {
		return 0
	}
	return 1 - math.Exp(-rate*dt)
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Uniform returns a vector with every component set to s.
func Uniform(s float64) r3.Vec {
	return r3.Vec{X: s, Y: s, Z: s}
}

// Mul multiplies two vectors component-wise.
func Mul(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z}
}

// Distance returns |a - b|.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// SafeUnit normalizes v, returning fallback when v is (near) zero.
func SafeUnit(v, fallback r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < epsilon || math.IsNaN(n) {
		return fallback
	}
	return r3.Scale(1/n, v)
}

// CosAngle returns the cosine of the angle between a and b, or 0 when either
// is zero.
func CosAngle(a, b r3.Vec) float64 {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na < epsilon || nb < epsilon {
		return 0
	}
	return math.Max(-1, math.Min(1, r3.Dot(a, b)/(na*nb)))
}

// Angle returns the angle between a and b in radians.
func Angle(a, b r3.Vec) float64 {
	return math.Acos(CosAngle(a, b))
}

// AxisAngle returns the rotation of angle radians about axis.
func AxisAngle(axis r3.Vec, angle float64) quat.Number {
	return quat.Number(r3.NewRotation(angle, SafeUnit(axis, Up)))
}

// Rotate applies rotation q to v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	return r3.Rotation(Normalize(q)).Rotate(v)
}

// Normalize returns q scaled to unit length, or Identity for a zero quaternion.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n < epsilon || math.IsNaN(n) {
		return Identity
	}
	return quat.Scale(1/n, q)
}

// LookRotation returns the rotation that maps world Forward onto forward and
// keeps world Up as close to up as possible.
func LookRotation(forward, up r3.Vec) quat.Number {
	f := SafeUnit(forward, Forward)
	r := r3.Cross(up, f)
	if r3.Norm(r) < 1e-6 {
		// forward is parallel to up; pick any perpendicular.
		r = r3.Cross(Right, f)
		if r3.Norm(r) < 1e-6 {
			r = r3.Cross(Forward, f)
		}
	}
	r = r3.Unit(r)
	u := r3.Cross(f, r)

	// Columns of the rotation matrix are r, u, f.
	m00, m01, m02 := r.X, u.X, f.X
	m10, m11, m12 := r.Y, u.Y, f.Y
	m20, m21, m22 := r.Z, u.Z, f.Z

	var q quat.Number
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q = quat.Number{Real: s / 4, Imag: (m21 - m12) / s, Jmag: (m02 - m20) / s, Kmag: (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = quat.Number{Real: (m21 - m12) / s, Imag: s / 4, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = quat.Number{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: s / 4, Kmag: (m12 + m21) / s}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = quat.Number{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: s / 4}
	}
	return Normalize(q)
}

// Slerp spherically interpolates between unit quaternions a and b.
func Slerp(a, b quat.Number, t float64) quat.Number {
	a, b = Normalize(a), Normalize(b)
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	if dot < 0 {
		b = quat.Scale(-1, b)
		dot = -dot
	}
	if dot > 0.9995 {
		return Normalize(quat.Add(a, quat.Scale(t, quat.Sub(b, a))))
	}

	theta := math.Acos(dot)
	sin := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sin
	wb := math.Sin(t*theta) / sin
	return Normalize(quat.Add(quat.Scale(wa, a), quat.Scale(wb, b)))
}

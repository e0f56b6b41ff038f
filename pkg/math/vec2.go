// Package math provides the vector and projection helpers used by the
// primitive and mesh renderers.
package math

import "math"

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Mul returns the componentwise product of v and other.
func (v Vec2) Mul(other Vec2) Vec2 {
	return Vec2{v.X * other.X, v.Y * other.Y}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product of v and other.
// In a y-down screen space a positive value means other lies clockwise of v.
func (v Vec2) Cross(other Vec2) float32 {
	return v.X*other.Y - v.Y*other.X
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Normalize returns a unit vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Unit returns v divided by its length. Unlike Normalize, a zero vector
// yields NaN components.
func (v Vec2) Unit() Vec2 {
	l := v.Length()
	return Vec2{v.X / l, v.Y / l}
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}

// ToRotation returns the angle of v in radians, in (-Pi, Pi].
func (v Vec2) ToRotation() float32 {
	return float32(math.Atan2(float64(v.Y), float64(v.X)))
}

// Rotate rotates v about the origin by radians.
func (v Vec2) Rotate(radians float32) Vec2 {
	s, c := math.Sincos(float64(radians))
	x, y := float64(v.X), float64(v.Y)
	return Vec2{
		X: float32(x*c - y*s),
		Y: float32(x*s + y*c),
	}
}

// RotateAround rotates v about origin by radians.
func (v Vec2) RotateAround(origin Vec2, radians float32) Vec2 {
	return v.Sub(origin).Rotate(radians).Add(origin)
}

// AngleBetween returns the unsigned angle between v and other, in [0, Pi].
func (v Vec2) AngleBetween(other Vec2) float32 {
	a := float64(v.ToRotation())
	b := float64(other.ToRotation())
	if a < 0 {
		a += 2 * math.Pi
	}
	if b < 0 {
		b += 2 * math.Pi
	}

	diff := math.Abs(a - b)
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	return float32(diff)
}

// ProjectOnto projects v onto axis.
func (v Vec2) ProjectOnto(axis Vec2) Vec2 {
	c := float32(math.Cos(float64(v.AngleBetween(axis))))
	return axis.Unit().Scale(v.Length() * c)
}

// Lerp linearly interpolates between v and other by t.
func (v Vec2) Lerp(other Vec2, t float32) Vec2 {
	return Vec2{
		X: v.X + (other.X-v.X)*t,
		Y: v.Y + (other.Y-v.Y)*t,
	}
}

// IsFinite reports whether neither component is NaN or infinite.
func (v Vec2) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y)
}

// HasZero reports whether either component is exactly zero.
func (v Vec2) HasZero() bool {
	return v.X == 0 || v.Y == 0
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

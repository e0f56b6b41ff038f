package math

import "math"

// Vec3 is a 3D vector. Batched 2D geometry keeps Z as a depth override.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// XY drops the depth component.
func (v Vec3) XY() Vec2 {
	return Vec2{v.X, v.Y}
}

// WithXY returns v with its X and Y replaced by p, keeping Z.
func (v Vec3) WithXY(p Vec2) Vec3 {
	return Vec3{p.X, p.Y, v.Z}
}

// Extend lifts a 2D point onto the plane at depth z.
func Extend(p Vec2, z float32) Vec3 {
	return Vec3{p.X, p.Y, z}
}

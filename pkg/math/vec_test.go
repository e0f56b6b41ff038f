package math

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return abs(a-b) < 1e-4
}

func nearVec2(a, b Vec2) bool {
	return near(a.X, b.X) && near(a.Y, b.Y)
}

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec2Normalize(t *testing.T) {
	v := Vec2{3, 4}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec2.Normalize().Length() = %v, want ~1", l)
	}
}

func TestVec2Rotate(t *testing.T) {
	tests := []struct {
		name    string
		v       Vec2
		radians float32
		want    Vec2
	}{
		{"quarter turn", Vec2{1, 0}, math.Pi / 2, Vec2{0, 1}},
		{"half turn", Vec2{1, 0}, math.Pi, Vec2{-1, 0}},
		{"negative", Vec2{0, 1}, -math.Pi / 2, Vec2{1, 0}},
		{"full turn", Vec2{3, -7}, 2 * math.Pi, Vec2{3, -7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Rotate(tt.radians)
			if !nearVec2(got, tt.want) {
				t.Errorf("Rotate(%v) = %v, want %v", tt.radians, got, tt.want)
			}
		})
	}
}

func TestVec2RotateAround(t *testing.T) {
	origin := Vec2{10, 10}
	got := Vec2{11, 10}.RotateAround(origin, math.Pi/2)
	want := Vec2{10, 11}
	if !nearVec2(got, want) {
		t.Errorf("RotateAround = %v, want %v", got, want)
	}

	// The origin itself never moves.
	if got := origin.RotateAround(origin, 1.3); !nearVec2(got, origin) {
		t.Errorf("origin moved to %v", got)
	}
}

func TestVec2AngleBetween(t *testing.T) {
	got := Vec2{1, 0}.AngleBetween(Vec2{0, -1})
	if !near(got, math.Pi/2) {
		t.Errorf("AngleBetween = %v, want Pi/2", got)
	}

	// Wraps across the +X axis instead of reporting the long way round.
	got = Vec2{1, 0.1}.AngleBetween(Vec2{1, -0.1})
	if got > 0.3 {
		t.Errorf("AngleBetween across +X = %v, want small", got)
	}
}

func TestVec2ProjectOnto(t *testing.T) {
	got := Vec2{3, 4}.ProjectOnto(Vec2{2, 0})
	if !nearVec2(got, Vec2{3, 0}) {
		t.Errorf("ProjectOnto = %v, want (3, 0)", got)
	}
}

func TestVec2IsFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	if !(Vec2{1, 2}).IsFinite() {
		t.Error("finite vector reported as non-finite")
	}
	if (Vec2{nan, 0}).IsFinite() {
		t.Error("NaN component not detected")
	}
	if (Vec2{0, inf}).IsFinite() {
		t.Error("Inf component not detected")
	}
}

func TestVec2Cross(t *testing.T) {
	// Screen space: +X right, +Y down. Right then down is clockwise.
	if got := (Vec2{1, 0}).Cross(Vec2{0, 1}); got <= 0 {
		t.Errorf("Cross = %v, want positive", got)
	}
	if got := (Vec2{0, 1}).Cross(Vec2{1, 0}); got >= 0 {
		t.Errorf("Cross = %v, want negative", got)
	}
}

func TestVec3XY(t *testing.T) {
	v := Vec3{1, 2, 3}
	if got := v.XY(); got != (Vec2{1, 2}) {
		t.Errorf("XY() = %v", got)
	}
	if got := v.WithXY(Vec2{5, 6}); got != (Vec3{5, 6, 3}) {
		t.Errorf("WithXY() = %v", got)
	}
}

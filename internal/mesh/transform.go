package mesh

import (
	"fmt"

	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Transforms validate their parameters before touching any vertex, so a
// rejected call leaves the mesh unchanged.

// ApplyTranslation moves every vertex by offset.
func (m *Mesh) ApplyTranslation(offset math.Vec2) error {
	if m.disposed {
		return ErrDisposed
	}
	if !offset.IsFinite() {
		return fmt.Errorf("%w: offset %v", ErrNotFinite, offset)
	}

	for i := range m.Vertices {
		p := &m.Vertices[i].Position
		p.X += offset.X
		p.Y += offset.Y
	}
	return nil
}

// ApplyRotation rotates every vertex about origin by radians. Vertices that
// coincide with origin are left untouched.
func (m *Mesh) ApplyRotation(origin math.Vec2, radians float32) error {
	if m.disposed {
		return ErrDisposed
	}
	if !origin.IsFinite() {
		return fmt.Errorf("%w: rotation origin %v", ErrNotFinite, origin)
	}
	if !math.IsFinite(radians) {
		return fmt.Errorf("%w: rotation %v", ErrNotFinite, radians)
	}

	for i := range m.Vertices {
		v := &m.Vertices[i]
		p := v.Position.XY()
		if p == origin {
			continue
		}
		v.Position = v.Position.WithXY(p.RotateAround(origin, radians))
	}
	return nil
}

// ApplyScale scales every vertex about center. axis is the direction of the
// scale's X axis in radians: offsets are rotated by -axis, scaled
// componentwise and rotated back. Zero components are rejected because the
// result could not be undone.
func (m *Mesh) ApplyScale(scale, center math.Vec2, axis float32) error {
	if m.disposed {
		return ErrDisposed
	}
	if !scale.IsFinite() {
		return fmt.Errorf("%w: scale %v", ErrNotFinite, scale)
	}
	if scale.HasZero() {
		return fmt.Errorf("%w: %v", ErrZeroScale, scale)
	}
	if !center.IsFinite() {
		return fmt.Errorf("%w: scale center %v", ErrNotFinite, center)
	}
	if !math.IsFinite(axis) {
		return fmt.Errorf("%w: scale axis %v", ErrNotFinite, axis)
	}

	for i := range m.Vertices {
		v := &m.Vertices[i]
		p := v.Position.XY()
		if p == center {
			continue
		}

		diff := p.Sub(center).Rotate(-axis).Mul(scale).Rotate(axis)
		v.Position = v.Position.WithXY(center.Add(diff))
	}
	return nil
}

// ApplyUniformScale scales both axes by s.
func (m *Mesh) ApplyUniformScale(s float32, center math.Vec2, axis float32) error {
	return m.ApplyScale(math.Vec2{X: s, Y: s}, center, axis)
}

package debug

import (
	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/mesh"
	"github.com/Faultbox/midgard-gfx/internal/primitives"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// DefaultBoundsPadding is the default padding for selection boxes.
const DefaultBoundsPadding = 1.0

// Bounds returns the axis-aligned box around points expanded by padding.
// ok is false for an empty slice.
func Bounds(points []math.Vec2, padding float32) (tl, br math.Vec2, ok bool) {
	if len(points) == 0 {
		return tl, br, false
	}
	tl, br = points[0], points[0]
	for _, p := range points[1:] {
		tl.X = min(tl.X, p.X)
		tl.Y = min(tl.Y, p.Y)
		br.X = max(br.X, p.X)
		br.Y = max(br.Y, p.Y)
	}
	pad := math.Vec2{X: padding, Y: padding}
	return tl.Sub(pad), br.Add(pad), true
}

// MeshOutline draws the box around each registered mesh. Mesh vertices are
// screen pixels; screen is the world position of the top-left pixel.
func MeshOutline(d *primitives.Drawer, reg *mesh.Registry, screen math.Vec2, color gpu.Color) error {
	for _, id := range reg.IDs() {
		m, err := reg.Lookup(id)
		if err != nil || m.Disposed() {
			continue
		}
		points := make([]math.Vec2, len(m.Vertices))
		for i, v := range m.Vertices {
			points[i] = v.Position.XY().Add(screen)
		}
		tl, br, ok := Bounds(points, DefaultBoundsPadding)
		if !ok {
			continue
		}
		if err := d.DrawHollowRectangle(tl, br, color, color, color, color); err != nil {
			return err
		}
	}
	return nil
}

// Package debug provides debug visualization utilities.
package debug

import (
	gomath "math"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/primitives"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// DefaultCellSize matches the 16px world tile of the demo scenes.
const DefaultCellSize = 16

// Grid draws world-aligned cell lines over the visible area.
type Grid struct {
	CellSize float32
	Color    gpu.Color

	// Every MajorEvery-th line uses MajorColor. Zero disables major lines.
	MajorEvery int
	MajorColor gpu.Color
}

// NewGrid creates a grid with the default cell size and colors.
func NewGrid() *Grid {
	return &Grid{
		CellSize:   DefaultCellSize,
		Color:      gpu.RGBA(128, 128, 128, 48),
		MajorEvery: 8,
		MajorColor: gpu.RGBA(128, 128, 128, 112),
	}
}

// VisibleBounds returns the world rectangle the viewport shows.
func VisibleBounds(view primitives.Viewport) (minV, maxV math.Vec2) {
	size := view.ScreenSize()
	zoom := view.Zoom()
	if zoom <= 0 {
		zoom = 1
	}
	center := view.ScreenPosition().Add(size.Scale(0.5))
	half := size.Scale(0.5 / zoom)
	return center.Sub(half), center.Add(half)
}

// Lines returns line-list endpoints for the minor and major grid lines
// covering the viewport.
func (g *Grid) Lines(view primitives.Viewport) (minor, major []math.Vec2) {
	if g.CellSize <= 0 {
		return nil, nil
	}
	lo, hi := VisibleBounds(view)

	firstX := int(gomath.Floor(float64(lo.X / g.CellSize)))
	lastX := int(gomath.Ceil(float64(hi.X / g.CellSize)))
	firstY := int(gomath.Floor(float64(lo.Y / g.CellSize)))
	lastY := int(gomath.Ceil(float64(hi.Y / g.CellSize)))

	add := func(i int, a, b math.Vec2) {
		if g.MajorEvery > 0 && i%g.MajorEvery == 0 {
			major = append(major, a, b)
			return
		}
		minor = append(minor, a, b)
	}

	// Vertical lines
	for x := firstX; x <= lastX; x++ {
		wx := float32(x) * g.CellSize
		add(x, math.Vec2{X: wx, Y: lo.Y}, math.Vec2{X: wx, Y: hi.Y})
	}

	// Horizontal lines
	for y := firstY; y <= lastY; y++ {
		wy := float32(y) * g.CellSize
		add(y, math.Vec2{X: lo.X, Y: wy}, math.Vec2{X: hi.X, Y: wy})
	}

	return minor, major
}

// Draw submits the grid through the drawer.
func (g *Grid) Draw(d *primitives.Drawer, view primitives.Viewport) error {
	minor, major := g.Lines(view)
	if len(minor) > 0 {
		if err := d.DrawLineList(minor, g.Color); err != nil {
			return err
		}
	}
	if len(major) > 0 {
		return d.DrawLineList(major, g.MajorColor)
	}
	return nil
}

// Package primitives draws immediate-mode 2D lines, rectangles, circles and
// triangles by batching colored vertices into a Packet and submitting it to
// the device in a single draw call.
package primitives

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// CircleSegments is the fixed angular resolution of circles: one vertex per degree.
const CircleSegments = 360

// Viewport is the camera state world positions are projected through.
type Viewport interface {
	ScreenSize() math.Vec2
	Zoom() float32
	ScreenPosition() math.Vec2
	GravityInverted() bool
}

// Drawer builds packets for common shapes and submits them immediately.
// It manipulates device state directly, so callers must not interleave it
// with another active render pass. Render thread only.
type Drawer struct {
	device   gpu.Device
	viewport Viewport
	effect   gpu.Effect
	log      *zap.Logger
}

// NewDrawer creates a drawer. effect is the vertex-color effect whose first
// pass is applied for every submission.
func NewDrawer(device gpu.Device, viewport Viewport, effect gpu.Effect) *Drawer {
	return &Drawer{
		device:   device,
		viewport: viewport,
		effect:   effect,
		log:      logger.Named("primitives"),
	}
}

// ToPrimitive converts a world position into a device-space vertex.
func (d *Drawer) ToPrimitive(world math.Vec2, color gpu.Color) gpu.VertexPositionColor {
	size := d.viewport.ScreenSize()
	pos := math.ScreenCoord(world.Sub(d.viewport.ScreenPosition()), size.X, size.Y, d.viewport.Zoom())
	if d.viewport.GravityInverted() {
		pos.Y = -pos.Y
	}
	return gpu.VertexPositionColor{Position: pos, Color: color}
}

// SubmitPacket uploads the packet into a transient vertex buffer and issues
// one draw call. The buffer and the packet are released afterwards, whether
// or not the draw succeeded.
func (d *Drawer) SubmitPacket(packet *Packet) error {
	if packet == nil {
		return ErrNilPacket
	}
	if packet.Released() {
		return ErrPacketReleased
	}
	defer packet.Release()

	count := packet.PrimitiveCount()
	if count <= 0 {
		return d.fail("submit", fmt.Errorf("%w: packet (%s) holds %d vertices",
			ErrTooFewPoints, packet.topology, packet.Len()))
	}

	vb, err := d.device.NewVertexBuffer(gpu.FormatPositionColor, packet.Len(), gpu.UsageWriteOnly)
	if err != nil {
		return d.fail("submit", err)
	}
	defer vb.Release()

	// Buffers cannot receive data while bound
	if err := d.device.SetVertexBuffer(nil); err != nil {
		return d.fail("submit", err)
	}
	if err := vb.SetData(gpu.ColoredVertices(packet.draws)); err != nil {
		return d.fail("submit", err)
	}
	if err := d.device.SetVertexBuffer(vb); err != nil {
		return d.fail("submit", err)
	}
	d.device.SetRenderState(gpu.DefaultRenderState)

	passes := d.effect.Passes()
	if len(passes) == 0 {
		return d.fail("submit", fmt.Errorf("%w: %s", ErrNoEffectPass, d.effect.Name()))
	}
	if err := passes[0].Apply(); err != nil {
		return d.fail("submit", err)
	}

	if err := d.device.DrawPrimitives(packet.topology, 0, count); err != nil {
		return d.fail("submit", err)
	}

	d.log.Debug("packet submitted",
		zap.Stringer("topology", packet.topology),
		zap.Int("vertices", packet.Len()),
		zap.Int("primitives", count),
	)
	return nil
}

func (d *Drawer) fail(op string, err error) error {
	d.log.Debug("primitive draw failed", zap.String("op", op), zap.Error(err))
	return err
}

// DrawLineStrip draws connected segments through points in a single color.
func (d *Drawer) DrawLineStrip(points []math.Vec2, color gpu.Color) error {
	return d.drawLineStrip(points, func(int) gpu.Color { return color })
}

// DrawLineStripLerp draws connected segments whose color moves linearly from
// start at the first point to end at the last.
func (d *Drawer) DrawLineStripLerp(points []math.Vec2, start, end gpu.Color) error {
	last := len(points) - 1
	return d.drawLineStrip(points, func(i int) gpu.Color {
		switch i {
		case 0:
			return start
		case last:
			return end
		}
		return start.Lerp(end, float32(i)/float32(last))
	})
}

// DrawLineStripColors draws connected segments with one color per point.
func (d *Drawer) DrawLineStripColors(points []math.Vec2, colors []gpu.Color) error {
	if points == nil {
		return d.fail("line strip", ErrNilPoints)
	}
	if colors == nil {
		return d.fail("line strip", ErrNilColors)
	}
	if err := matchColors(points, colors); err != nil {
		return d.fail("line strip", err)
	}
	return d.drawLineStrip(points, func(i int) gpu.Color { return colors[i] })
}

func (d *Drawer) drawLineStrip(points []math.Vec2, colorAt func(int) gpu.Color) error {
	if points == nil {
		return d.fail("line strip", ErrNilPoints)
	}
	if len(points) < 2 {
		return d.fail("line strip", fmt.Errorf("%w to draw a line: got %d", ErrTooFewPoints, len(points)))
	}

	packet := NewPacket(gpu.LineStrip)
	if err := packet.AddDraw(d.ToPrimitive(points[0], colorAt(0)), d.ToPrimitive(points[1], colorAt(1))); err != nil {
		return err
	}
	for i := 2; i < len(points); i++ {
		if err := packet.AddDraw(d.ToPrimitive(points[i], colorAt(i))); err != nil {
			return err
		}
	}
	return d.SubmitPacket(packet)
}

// DrawLineList draws disjoint segments from consecutive point pairs.
func (d *Drawer) DrawLineList(points []math.Vec2, color gpu.Color) error {
	return d.drawLineList(points, func(int) gpu.Color { return color })
}

// DrawLineListColors draws disjoint segments with one color per point.
func (d *Drawer) DrawLineListColors(points []math.Vec2, colors []gpu.Color) error {
	if points == nil {
		return d.fail("line list", ErrNilPoints)
	}
	if colors == nil {
		return d.fail("line list", ErrNilColors)
	}
	if err := matchColors(points, colors); err != nil {
		return d.fail("line list", err)
	}
	return d.drawLineList(points, func(i int) gpu.Color { return colors[i] })
}

func (d *Drawer) drawLineList(points []math.Vec2, colorAt func(int) gpu.Color) error {
	if points == nil {
		return d.fail("line list", ErrNilPoints)
	}
	if len(points)%2 != 0 {
		return d.fail("line list", fmt.Errorf("%w: length of points array must be a multiple of 2, got %d",
			ErrPointCount, len(points)))
	}
	if len(points) < 2 {
		return d.fail("line list", fmt.Errorf("%w to draw a line: got %d", ErrTooFewPoints, len(points)))
	}

	packet := NewPacket(gpu.LineList)
	for i := 0; i < len(points); i += 2 {
		if err := packet.AddDraw(
			d.ToPrimitive(points[i], colorAt(i)),
			d.ToPrimitive(points[i+1], colorAt(i+1)),
		); err != nil {
			return err
		}
	}
	return d.SubmitPacket(packet)
}

// DrawHollowRectangle outlines the axis-aligned rectangle spanned by tl and
// br with four segments, each corner colored independently.
func (d *Drawer) DrawHollowRectangle(tl, br math.Vec2, colorTL, colorTR, colorBL, colorBR gpu.Color) error {
	tr := math.Vec2{X: br.X, Y: tl.Y}
	bl := math.Vec2{X: tl.X, Y: br.Y}

	packet := NewPacket(gpu.LineList)
	segments := [4][2]gpu.VertexPositionColor{
		{d.ToPrimitive(tl, colorTL), d.ToPrimitive(tr, colorTR)},
		{d.ToPrimitive(tr, colorTR), d.ToPrimitive(br, colorBR)},
		{d.ToPrimitive(br, colorBR), d.ToPrimitive(bl, colorBL)},
		{d.ToPrimitive(bl, colorBL), d.ToPrimitive(tl, colorTL)},
	}
	for _, s := range segments {
		if err := packet.AddDraw(s[0], s[1]); err != nil {
			return err
		}
	}
	return d.SubmitPacket(packet)
}

// DrawFilledRectangle fills the axis-aligned rectangle spanned by tl and br
// with two triangles, interpolating the corner colors.
func (d *Drawer) DrawFilledRectangle(tl, br math.Vec2, colorTL, colorTR, colorBL, colorBR gpu.Color) error {
	tr := math.Vec2{X: br.X, Y: tl.Y}
	bl := math.Vec2{X: tl.X, Y: br.Y}

	packet := NewPacket(gpu.TriangleList)
	if err := packet.AddDraw(d.ToPrimitive(tl, colorTL), d.ToPrimitive(tr, colorTR), d.ToPrimitive(bl, colorBL)); err != nil {
		return err
	}
	if err := packet.AddDraw(d.ToPrimitive(bl, colorBL), d.ToPrimitive(tr, colorTR), d.ToPrimitive(br, colorBR)); err != nil {
		return err
	}
	return d.SubmitPacket(packet)
}

// DrawHollowCircle outlines a circle as a closed strip of CircleSegments segments.
func (d *Drawer) DrawHollowCircle(center math.Vec2, radius float32, color gpu.Color) error {
	if err := checkRadius(radius); err != nil {
		return d.fail("hollow circle", err)
	}

	packet := NewPacket(gpu.LineStrip)
	if err := packet.AddDraw(
		d.ToPrimitive(circlePoint(center, radius, 0), color),
		d.ToPrimitive(circlePoint(center, radius, 1), color),
	); err != nil {
		return err
	}
	for deg := 2; deg <= CircleSegments; deg++ {
		if err := packet.AddDraw(d.ToPrimitive(circlePoint(center, radius, deg), color)); err != nil {
			return err
		}
	}
	return d.SubmitPacket(packet)
}

// DrawFilledCircle fills a circle with a fan of CircleSegments triangles.
func (d *Drawer) DrawFilledCircle(center math.Vec2, radius float32, color gpu.Color) error {
	return d.drawFilledCircle(center, radius, color, color)
}

// DrawFilledCircleGradient fills a circle whose color moves from centerColor
// at the middle to edge at the circumference.
func (d *Drawer) DrawFilledCircleGradient(center math.Vec2, radius float32, centerColor, edge gpu.Color) error {
	return d.drawFilledCircle(center, radius, centerColor, edge)
}

func (d *Drawer) drawFilledCircle(center math.Vec2, radius float32, centerColor, edge gpu.Color) error {
	if err := checkRadius(radius); err != nil {
		return d.fail("filled circle", err)
	}

	mid := d.ToPrimitive(center, centerColor)
	packet := NewPacket(gpu.TriangleList)
	for deg := 0; deg < CircleSegments; deg++ {
		if err := packet.AddDraw(
			d.ToPrimitive(circlePoint(center, radius, deg), edge),
			d.ToPrimitive(circlePoint(center, radius, deg+1), edge),
			mid,
		); err != nil {
			return err
		}
	}
	return d.SubmitPacket(packet)
}

// DrawTriangleList draws one triangle per three points in a single color.
func (d *Drawer) DrawTriangleList(points []math.Vec2, color gpu.Color) error {
	return d.drawTriangleList(points, func(int) gpu.Color { return color })
}

// DrawTriangleListColors draws one triangle per three points with one color per point.
func (d *Drawer) DrawTriangleListColors(points []math.Vec2, colors []gpu.Color) error {
	if points == nil {
		return d.fail("triangle list", ErrNilPoints)
	}
	if colors == nil {
		return d.fail("triangle list", ErrNilColors)
	}
	if err := matchColors(points, colors); err != nil {
		return d.fail("triangle list", err)
	}
	return d.drawTriangleList(points, func(i int) gpu.Color { return colors[i] })
}

func (d *Drawer) drawTriangleList(points []math.Vec2, colorAt func(int) gpu.Color) error {
	if points == nil {
		return d.fail("triangle list", ErrNilPoints)
	}
	if len(points)%3 != 0 {
		return d.fail("triangle list", fmt.Errorf("%w: length of points array must be a multiple of 3, got %d",
			ErrPointCount, len(points)))
	}
	if len(points) < 3 {
		return d.fail("triangle list", fmt.Errorf("%w to draw a triangle: got %d", ErrTooFewPoints, len(points)))
	}

	packet := NewPacket(gpu.TriangleList)
	for i := 0; i < len(points); i += 3 {
		if err := packet.AddDraw(
			d.ToPrimitive(points[i], colorAt(i)),
			d.ToPrimitive(points[i+1], colorAt(i+1)),
			d.ToPrimitive(points[i+2], colorAt(i+2)),
		); err != nil {
			return err
		}
	}
	return d.SubmitPacket(packet)
}

func matchColors(points []math.Vec2, colors []gpu.Color) error {
	if len(colors) != len(points) {
		return fmt.Errorf("%w: length of colors array (%d) must match length of points array (%d)",
			ErrColorCount, len(colors), len(points))
	}
	return nil
}

func checkRadius(radius float32) error {
	if !math.IsFinite(radius) || radius <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}
	return nil
}

// circlePoint returns the point deg degrees around the circle, measured from
// the +X axis toward +Y. 360 returns the starting point exactly.
func circlePoint(center math.Vec2, radius float32, deg int) math.Vec2 {
	deg %= CircleSegments
	offset := math.Vec2{X: radius}.Rotate(float32(deg) * 2 * gomath.Pi / CircleSegments)
	return center.Add(offset)
}

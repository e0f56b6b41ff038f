package primitives

import (
	"errors"
	gomath "math"
	"slices"
	"testing"

	"github.com/Faultbox/midgard-gfx/internal/engine/camera"
	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/engine/raster"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

const (
	screenW = 200
	screenH = 100
)

func newDrawer(t *testing.T) (*Drawer, *raster.Device, *camera.Camera2D) {
	t.Helper()
	dev := raster.New(screenW, screenH)
	cam := camera.New2D(screenW, screenH)
	eff, err := dev.NewVertexColorEffect()
	if err != nil {
		t.Fatalf("NewVertexColorEffect: %v", err)
	}
	return NewDrawer(dev, cam, eff), dev, cam
}

// uploaded returns the colored vertices of the last submission, in pixels.
func uploaded(t *testing.T, dev *raster.Device) ([]math.Vec2, []gpu.Color) {
	t.Helper()
	data, ok := dev.LastVertices().(gpu.ColoredVertices)
	if !ok {
		t.Fatalf("last upload is %T, want colored vertices", dev.LastVertices())
	}
	pos := make([]math.Vec2, len(data))
	cols := make([]gpu.Color, len(data))
	for i, v := range data {
		pos[i] = math.NDCToScreen(v.Position, screenW, screenH)
		cols[i] = v.Color
	}
	return pos, cols
}

func lastDraw(t *testing.T, dev *raster.Device) raster.Call {
	t.Helper()
	draws := dev.Draws()
	if len(draws) == 0 {
		t.Fatal("no draw recorded")
	}
	return draws[len(draws)-1]
}

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-3
}

func TestSubmitPacketOrdering(t *testing.T) {
	d, dev, _ := newDrawer(t)

	if err := d.DrawLineStrip([]math.Vec2{{X: 0, Y: 0}, {X: 10, Y: 10}}, gpu.Red); err != nil {
		t.Fatalf("DrawLineStrip: %v", err)
	}

	want := []raster.Op{
		raster.OpCreateVertexBuffer,
		raster.OpSetVertexBuffer, // cleared
		raster.OpUploadVertices,
		raster.OpSetVertexBuffer,
		raster.OpSetRenderState,
		raster.OpApplyPass,
		raster.OpDraw,
		raster.OpReleaseVertexBuffer,
	}
	if got := dev.Ops(); !slices.Equal(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}

	calls := dev.Calls()
	if !calls[1].Clear {
		t.Error("binding must be cleared before upload")
	}
	if calls[0].Count != 2 {
		t.Errorf("transient buffer sized %d, want 2", calls[0].Count)
	}
	if calls[5].Effect != "VertexColor" || calls[5].Pass != 0 {
		t.Errorf("applied %s#%d, want VertexColor#0", calls[5].Effect, calls[5].Pass)
	}
	draw := calls[6]
	if draw.Topology != gpu.LineStrip || draw.Start != 0 || draw.Count != 1 {
		t.Errorf("draw = %v", draw)
	}
}

func TestSubmitPacketReleases(t *testing.T) {
	d, _, _ := newDrawer(t)

	p := NewPacket(gpu.LineList)
	if err := p.AddDraw(d.ToPrimitive(math.Vec2{}, gpu.Red), d.ToPrimitive(math.Vec2{X: 5}, gpu.Red)); err != nil {
		t.Fatal(err)
	}
	if err := d.SubmitPacket(p); err != nil {
		t.Fatalf("SubmitPacket: %v", err)
	}
	if !p.Released() {
		t.Error("packet should be released after submission")
	}
	if err := d.SubmitPacket(p); !errors.Is(err, ErrPacketReleased) {
		t.Errorf("resubmit: got %v, want ErrPacketReleased", err)
	}
	if err := d.SubmitPacket(nil); !errors.Is(err, ErrNilPacket) {
		t.Errorf("nil packet: got %v, want ErrNilPacket", err)
	}
	if err := d.SubmitPacket(NewPacket(gpu.LineStrip)); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("empty packet: got %v, want ErrTooFewPoints", err)
	}
}

func TestLineStripLerpParameter(t *testing.T) {
	d, dev, _ := newDrawer(t)
	start := gpu.RGBA(0, 0, 0, 255)
	end := gpu.RGBA(200, 100, 50, 0)

	for n := 2; n <= 7; n++ {
		points := make([]math.Vec2, n)
		for i := range points {
			points[i] = math.Vec2{X: float32(i * 10), Y: 20}
		}
		if err := d.DrawLineStripLerp(points, start, end); err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}

		_, cols := uploaded(t, dev)
		if len(cols) != n {
			t.Fatalf("n=%d: %d vertices uploaded", n, len(cols))
		}
		if cols[0] != start || cols[n-1] != end {
			t.Errorf("n=%d: endpoints %v..%v, want exact %v..%v", n, cols[0], cols[n-1], start, end)
		}
		for i, c := range cols {
			want := start.Lerp(end, float32(i)/float32(n-1))
			if c != want {
				t.Errorf("n=%d point %d: color %v, want %v", n, i, c, want)
			}
		}
	}
}

func TestLineStripColorsPerPoint(t *testing.T) {
	d, dev, _ := newDrawer(t)
	colors := []gpu.Color{gpu.Red, gpu.Green, gpu.Blue}

	if err := d.DrawLineStripColors([]math.Vec2{{X: 0}, {X: 10}, {X: 20}}, colors); err != nil {
		t.Fatal(err)
	}
	_, cols := uploaded(t, dev)
	if !slices.Equal(cols, colors) {
		t.Errorf("colors = %v, want %v", cols, colors)
	}
}

func TestRectangleBoundingBox(t *testing.T) {
	tl := math.Vec2{X: 20, Y: 10}
	br := math.Vec2{X: 150, Y: 80}

	for _, filled := range []bool{false, true} {
		d, dev, _ := newDrawer(t)
		var err error
		if filled {
			err = d.DrawFilledRectangle(tl, br, gpu.Red, gpu.Green, gpu.Blue, gpu.White)
		} else {
			err = d.DrawHollowRectangle(tl, br, gpu.Red, gpu.Green, gpu.Blue, gpu.White)
		}
		if err != nil {
			t.Fatalf("filled=%v: %v", filled, err)
		}

		pos, _ := uploaded(t, dev)
		minP, maxP := pos[0], pos[0]
		for _, p := range pos {
			minP = math.Vec2{X: min(minP.X, p.X), Y: min(minP.Y, p.Y)}
			maxP = math.Vec2{X: max(maxP.X, p.X), Y: max(maxP.Y, p.Y)}
		}
		if !near(minP.X, tl.X) || !near(minP.Y, tl.Y) || !near(maxP.X, br.X) || !near(maxP.Y, br.Y) {
			t.Errorf("filled=%v: bbox [%v, %v], want [%v, %v]", filled, minP, maxP, tl, br)
		}

		draw := lastDraw(t, dev)
		if filled && (draw.Topology != gpu.TriangleList || draw.Count != 2) {
			t.Errorf("filled rectangle draw = %v", draw)
		}
		if !filled && (draw.Topology != gpu.LineList || draw.Count != 4) {
			t.Errorf("hollow rectangle draw = %v", draw)
		}
	}
}

func TestFilledRectanglePixels(t *testing.T) {
	d, dev, _ := newDrawer(t)
	if err := d.DrawFilledRectangle(math.Vec2{X: 10, Y: 10}, math.Vec2{X: 50, Y: 40}, gpu.Red, gpu.Red, gpu.Red, gpu.Red); err != nil {
		t.Fatal(err)
	}

	fb := dev.FrameBuffer()
	if got := fb.At(30, 25); got != gpu.Red {
		t.Errorf("inside = %v, want red", got)
	}
	if got := fb.At(60, 25); got != gpu.Transparent {
		t.Errorf("outside = %v, want untouched", got)
	}
}

func TestCircles(t *testing.T) {
	center := math.Vec2{X: 100, Y: 50}

	t.Run("hollow", func(t *testing.T) {
		d, dev, _ := newDrawer(t)
		if err := d.DrawHollowCircle(center, 30, gpu.Yellow); err != nil {
			t.Fatal(err)
		}
		draw := lastDraw(t, dev)
		if draw.Topology != gpu.LineStrip || draw.Count != CircleSegments {
			t.Fatalf("draw = %v, want closed strip of %d segments", draw, CircleSegments)
		}

		pos, _ := uploaded(t, dev)
		if len(pos) != CircleSegments+1 {
			t.Fatalf("%d vertices, want %d", len(pos), CircleSegments+1)
		}
		if pos[0] != pos[CircleSegments] {
			t.Errorf("strip not closed: %v != %v", pos[0], pos[CircleSegments])
		}
		for i, p := range pos {
			if r := p.Distance(center); !near(r, 30) {
				t.Fatalf("vertex %d at radius %v, want 30 around the center", i, r)
			}
		}
	})

	t.Run("filled gradient", func(t *testing.T) {
		d, dev, _ := newDrawer(t)
		if err := d.DrawFilledCircleGradient(center, 20, gpu.White, gpu.Blue); err != nil {
			t.Fatal(err)
		}
		draw := lastDraw(t, dev)
		if draw.Topology != gpu.TriangleList || draw.Count != CircleSegments {
			t.Fatalf("draw = %v, want %d-triangle fan", draw, CircleSegments)
		}

		pos, cols := uploaded(t, dev)
		for i := 0; i < len(pos); i += 3 {
			if cols[i] != gpu.Blue || cols[i+1] != gpu.Blue || cols[i+2] != gpu.White {
				t.Fatalf("triangle %d colors %v", i/3, cols[i:i+3])
			}
			if !near(pos[i+2].X, center.X) || !near(pos[i+2].Y, center.Y) {
				t.Fatalf("triangle %d apex %v, want center", i/3, pos[i+2])
			}
		}
		if got := dev.FrameBuffer().At(100, 50); got.B < 200 {
			t.Errorf("center pixel %v not filled", got)
		}
	})

	t.Run("filled single color", func(t *testing.T) {
		d, dev, _ := newDrawer(t)
		if err := d.DrawFilledCircle(center, 20, gpu.Green); err != nil {
			t.Fatal(err)
		}
		if got := dev.FrameBuffer().At(100, 50); got != gpu.Green {
			t.Errorf("center pixel = %v, want green", got)
		}
	})
}

func TestTriangleListColorsTopology(t *testing.T) {
	d, dev, _ := newDrawer(t)
	points := []math.Vec2{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 0, Y: 40}}

	if err := d.DrawTriangleListColors(points, []gpu.Color{gpu.Red, gpu.Green, gpu.Blue}); err != nil {
		t.Fatal(err)
	}
	if draw := lastDraw(t, dev); draw.Topology != gpu.TriangleList || draw.Count != 1 {
		t.Errorf("draw = %v, want one TriangleList primitive", draw)
	}
}

func TestDrawValidation(t *testing.T) {
	two := []math.Vec2{{X: 0}, {X: 1}}
	four := []math.Vec2{{X: 0}, {X: 1}, {X: 2}, {X: 3}}

	tests := []struct {
		name string
		call func(d *Drawer) error
		want error
	}{
		{"line strip nil", func(d *Drawer) error { return d.DrawLineStrip(nil, gpu.Red) }, ErrNilPoints},
		{"line strip one point", func(d *Drawer) error { return d.DrawLineStrip(two[:1], gpu.Red) }, ErrTooFewPoints},
		{"line strip lerp one point", func(d *Drawer) error { return d.DrawLineStripLerp(two[:1], gpu.Red, gpu.Blue) }, ErrTooFewPoints},
		{"line strip nil colors", func(d *Drawer) error { return d.DrawLineStripColors(two, nil) }, ErrNilColors},
		{"line strip color mismatch", func(d *Drawer) error { return d.DrawLineStripColors(two, []gpu.Color{gpu.Red}) }, ErrColorCount},
		{"line list odd", func(d *Drawer) error { return d.DrawLineList(four[:3], gpu.Red) }, ErrPointCount},
		{"line list empty", func(d *Drawer) error { return d.DrawLineList([]math.Vec2{}, gpu.Red) }, ErrTooFewPoints},
		{"line list colors empty", func(d *Drawer) error { return d.DrawLineListColors([]math.Vec2{}, []gpu.Color{}) }, ErrTooFewPoints},
		{"line list color mismatch", func(d *Drawer) error { return d.DrawLineListColors(four, []gpu.Color{gpu.Red}) }, ErrColorCount},
		{"triangles four points", func(d *Drawer) error { return d.DrawTriangleList(four, gpu.Red) }, ErrPointCount},
		{"triangles empty", func(d *Drawer) error { return d.DrawTriangleList([]math.Vec2{}, gpu.Red) }, ErrTooFewPoints},
		{"triangles nil", func(d *Drawer) error { return d.DrawTriangleListColors(nil, nil) }, ErrNilPoints},
		{"triangles color mismatch", func(d *Drawer) error { return d.DrawTriangleListColors(four[:3], []gpu.Color{gpu.Red}) }, ErrColorCount},
		{"hollow circle negative radius", func(d *Drawer) error { return d.DrawHollowCircle(math.Vec2{}, -5, gpu.Red) }, ErrInvalidRadius},
		{"filled circle zero radius", func(d *Drawer) error { return d.DrawFilledCircle(math.Vec2{}, 0, gpu.Red) }, ErrInvalidRadius},
		{"gradient circle NaN radius", func(d *Drawer) error {
			return d.DrawFilledCircleGradient(math.Vec2{}, float32(gomath.NaN()), gpu.Red, gpu.Blue)
		}, ErrInvalidRadius},
		{"hollow circle infinite radius", func(d *Drawer) error {
			return d.DrawHollowCircle(math.Vec2{}, float32(gomath.Inf(1)), gpu.Red)
		}, ErrInvalidRadius},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, dev, _ := newDrawer(t)
			if err := tt.call(d); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if len(dev.Calls()) != 0 {
				t.Errorf("failed call touched the device: %v", dev.Calls())
			}
		})
	}
}

func TestToPrimitive(t *testing.T) {
	d, _, cam := newDrawer(t)

	center := d.ToPrimitive(math.Vec2{X: screenW / 2, Y: screenH / 2}, gpu.Red)
	if !near(center.Position.X, 0) || !near(center.Position.Y, 0) || center.Color != gpu.Red {
		t.Errorf("screen center maps to %v", center)
	}

	topLeft := d.ToPrimitive(math.Vec2{}, gpu.Red)
	if !near(topLeft.Position.X, -1) || !near(topLeft.Position.Y, 1) {
		t.Errorf("top-left maps to %v, want (-1, 1)", topLeft.Position)
	}

	cam.Position = math.Vec2{X: 50, Y: 25}
	shifted := d.ToPrimitive(math.Vec2{X: 50, Y: 25}, gpu.Red)
	if !near(shifted.Position.X, -1) || !near(shifted.Position.Y, 1) {
		t.Errorf("camera offset not subtracted: %v", shifted.Position)
	}

	cam.Position = math.Vec2{}
	cam.Scale = 2
	zoomed := d.ToPrimitive(math.Vec2{X: 150, Y: 50}, gpu.Red)
	if !near(zoomed.Position.X, 1) {
		t.Errorf("zoom about center: X = %v, want 1", zoomed.Position.X)
	}

	cam.Scale = 1
	cam.Inverted = true
	flipped := d.ToPrimitive(math.Vec2{}, gpu.Red)
	if !near(flipped.Position.Y, -1) {
		t.Errorf("inverted gravity: Y = %v, want -1", flipped.Position.Y)
	}
}

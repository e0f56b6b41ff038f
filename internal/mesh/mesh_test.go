package mesh

import (
	"errors"
	"image"
	gomath "math"
	"slices"
	"testing"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/engine/raster"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

var (
	squarePositions = []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	squareIndices   = []int32{0, 1, 2, 2, 1, 3}
)

type fixture struct {
	dev *raster.Device
	reg *Registry
	tex gpu.Texture
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dev := raster.New(64, 64)
	tex, err := dev.NewTexture(image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	return fixture{dev: dev, reg: NewRegistry(), tex: tex}
}

func (f fixture) config() Config {
	return Config{Device: f.dev, Registry: f.reg, Texture: f.tex}
}

func (f fixture) square(t *testing.T) *Mesh {
	t.Helper()
	m, err := New(f.config(), Geometry{
		Positions: squarePositions,
		TexCoords: squarePositions,
		Color:     gpu.White,
		Indices:   squareIndices,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func positions(m *Mesh) []math.Vec2 {
	out := make([]math.Vec2, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = v.Position.XY()
	}
	return out
}

func nearVec(a, b math.Vec2) bool {
	return gomath.Abs(float64(a.X-b.X)) < 1e-4 && gomath.Abs(float64(a.Y-b.Y)) < 1e-4
}

func TestNewValidation(t *testing.T) {
	f := newFixture(t)
	released := raster.NewTexture(image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	released.Release()

	tri := []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

	tests := []struct {
		name string
		cfg  Config
		geom Geometry
		want error
	}{
		{"no device", Config{Registry: f.reg, Texture: f.tex}, Geometry{Positions: tri, TexCoords: tri}, ErrNoDevice},
		{"no registry", Config{Device: f.dev, Texture: f.tex}, Geometry{Positions: tri, TexCoords: tri}, ErrNoRegistry},
		{"nil texture", Config{Device: f.dev, Registry: f.reg}, Geometry{Positions: tri, TexCoords: tri}, ErrInvalidTexture},
		{"released texture", Config{Device: f.dev, Registry: f.reg, Texture: released}, Geometry{Positions: tri, TexCoords: tri}, ErrInvalidTexture},
		{"nil positions", f.config(), Geometry{TexCoords: tri}, ErrNilArray},
		{"nil texcoords", f.config(), Geometry{Positions: tri}, ErrNilArray},
		{"empty", f.config(), Geometry{Positions: []math.Vec2{}, TexCoords: []math.Vec2{}}, ErrEmptyGeometry},
		{"length mismatch", f.config(), Geometry{Positions: tri, TexCoords: tri[:2]}, ErrLengthMismatch},
		{"color mismatch", f.config(), Geometry{Positions: tri, TexCoords: tri, Colors: []gpu.Color{gpu.Red}}, ErrLengthMismatch},
		{"not a triangle list", f.config(), Geometry{Positions: squarePositions, TexCoords: squarePositions}, ErrVertexCount},
		{"texcoord range", f.config(), Geometry{Positions: tri, TexCoords: []math.Vec2{{X: 0}, {X: 1.5}, {Y: 1}}}, ErrTexCoordRange},
		{"index count", f.config(), Geometry{Positions: squarePositions, TexCoords: squarePositions, Indices: []int32{0, 1}}, ErrIndexCount},
		{"index range", f.config(), Geometry{Positions: squarePositions, TexCoords: squarePositions, Indices: []int32{0, 1, 4}}, ErrIndexRange},
		{"conflicting", f.config(), Geometry{Positions: tri, Vertices: make([]gpu.VertexPositionColorTexture, 3)}, ErrConflictingGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.cfg, tt.geom)
			if !errors.Is(err, tt.want) {
				t.Fatalf("New: got %v, want %v", err, tt.want)
			}
			if m != nil {
				t.Error("mesh returned alongside error")
			}
		})
	}

	if f.reg.Len() != 0 {
		t.Errorf("failed constructions registered %d meshes", f.reg.Len())
	}
}

func TestNewCopiesInput(t *testing.T) {
	f := newFixture(t)
	pos := slices.Clone(squarePositions)
	idx := slices.Clone(squareIndices)

	m, err := New(f.config(), Geometry{Positions: pos, TexCoords: pos, Indices: idx})
	if err != nil {
		t.Fatal(err)
	}
	pos[0] = math.Vec2{X: 9, Y: 9}
	idx[0] = 3

	if got := m.Vertices[0].Position.XY(); got != (math.Vec2{}) {
		t.Errorf("vertex 0 followed caller slice: %v", got)
	}
	if got := m.Indices(); !slices.Equal(got, squareIndices) {
		t.Errorf("indices followed caller slice: %v", got)
	}
}

func TestPerVertexColors(t *testing.T) {
	f := newFixture(t)
	tri := []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	cols := []gpu.Color{gpu.Red, gpu.Green, gpu.Blue}

	m, err := New(f.config(), Geometry{Positions: tri, TexCoords: tri, Colors: cols})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range m.Vertices {
		if v.Color != cols[i] {
			t.Errorf("vertex %d color %v, want %v", i, v.Color, cols[i])
		}
	}
	if m.HasCustomIndices() {
		t.Error("mesh without indices should index sequentially")
	}
	if got := m.Indices(); !slices.Equal(got, []int32{0, 1, 2}) {
		t.Errorf("indices = %v", got)
	}
}

func TestDrawSquare(t *testing.T) {
	f := newFixture(t)
	m := f.square(t)

	if got := m.PrimitiveCount(); got != 2 {
		t.Fatalf("PrimitiveCount = %d, want 2", got)
	}
	f.dev.ResetCalls()
	if err := m.Draw(); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	draws := f.dev.Draws()
	if len(draws) != 1 {
		t.Fatalf("%d draws, want 1", len(draws))
	}
	d := draws[0]
	if d.Op != raster.OpDrawIndexed || d.Topology != gpu.TriangleList || d.NumVertices != 4 || d.Count != 2 {
		t.Errorf("draw = %v", d)
	}
	if tex := f.dev.Texture(0); tex != f.tex {
		t.Error("texture not bound to slot 0")
	}

	// Second draw reuses both buffers
	f.dev.ResetCalls()
	if err := m.Draw(); err != nil {
		t.Fatal(err)
	}
	for _, op := range f.dev.Ops() {
		if op == raster.OpCreateVertexBuffer || op == raster.OpCreateIndexBuffer || op == raster.OpUploadIndices {
			t.Errorf("unexpected %s on unchanged mesh", op)
		}
	}
}

func TestDrawUploadOrder(t *testing.T) {
	f := newFixture(t)
	m := f.square(t)
	f.dev.ResetCalls()

	if err := m.Draw(); err != nil {
		t.Fatal(err)
	}
	calls := f.dev.Calls()
	clear, upload := -1, -1
	for i, c := range calls {
		if c.Op == raster.OpSetVertexBuffer && c.Clear && clear < 0 {
			clear = i
		}
		if c.Op == raster.OpUploadVertices {
			upload = i
		}
	}
	if clear < 0 || upload < 0 || clear > upload {
		t.Errorf("vertex buffer must be unbound before upload: %v", calls)
	}
}

func TestDrawRejectsCounterClockwise(t *testing.T) {
	f := newFixture(t)
	m := f.square(t)

	if err := m.UpdateIndexBuffer([]int32{2, 1, 0, 3, 1, 2}); err != nil {
		t.Fatalf("UpdateIndexBuffer: %v", err)
	}
	f.dev.ResetCalls()

	err := m.Draw()
	if !errors.Is(err, ErrCounterClockwise) {
		t.Fatalf("Draw: got %v, want ErrCounterClockwise", err)
	}
	if len(f.dev.Calls()) != 0 {
		t.Errorf("rejected draw touched the device: %v", f.dev.Calls())
	}
}

func TestVertexCountChangeRevertsIndices(t *testing.T) {
	f := newFixture(t)
	m := f.square(t)

	m.Vertices = append(m.Vertices,
		gpu.VertexPositionColorTexture{Position: math.Vec3{X: 2, Y: 0}},
		gpu.VertexPositionColorTexture{Position: math.Vec3{X: 3, Y: 0}},
	)
	// 6 vertices, sequential: (0,1,2) and (3,4,5)
	m.Vertices[3].Position = math.Vec3{X: 2, Y: 2}
	m.Vertices[4].Position = math.Vec3{X: 3, Y: 2}
	m.Vertices[5].Position = math.Vec3{X: 2, Y: 3}

	if err := m.Draw(); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if m.HasCustomIndices() {
		t.Error("custom indices should be dropped after a vertex count change")
	}
	if got := m.Indices(); !slices.Equal(got, []int32{0, 1, 2, 3, 4, 5}) {
		t.Errorf("indices = %v", got)
	}
	if got := m.PrimitiveCount(); got != 2 {
		t.Errorf("PrimitiveCount = %d, want 2", got)
	}

	m.Vertices = m.Vertices[:5]
	if err := m.Draw(); !errors.Is(err, ErrVertexCount) {
		t.Errorf("Draw with 5 sequential vertices: got %v, want ErrVertexCount", err)
	}
}

func TestUpdateIndexBuffer(t *testing.T) {
	f := newFixture(t)
	m := f.square(t)

	tests := []struct {
		name    string
		indices []int32
		want    error
	}{
		{"empty", []int32{}, ErrIndexCount},
		{"not triangles", []int32{0, 1, 2, 3}, ErrIndexCount},
		{"out of range", []int32{0, 1, 7}, ErrIndexRange},
		{"negative", []int32{0, -1, 2}, ErrIndexRange},
		{"valid", []int32{0, 1, 2}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.UpdateIndexBuffer(tt.indices); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if got := m.PrimitiveCount(); got != 1 {
		t.Errorf("PrimitiveCount = %d, want 1", got)
	}
	f.dev.ResetCalls()
	if err := m.Draw(); err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(f.dev.Ops(), raster.OpCreateIndexBuffer) {
		t.Error("shorter index array should reallocate the index buffer")
	}
}

func TestDrawWithShaderPasses(t *testing.T) {
	f := newFixture(t)
	m := f.square(t)
	eff := f.dev.NewEffect("Outline", 2)
	if err := m.SetShader(eff); err != nil {
		t.Fatal(err)
	}
	f.dev.ResetCalls()

	if err := m.Draw(); err != nil {
		t.Fatal(err)
	}
	draws := f.dev.Draws()
	if len(draws) != 2 {
		t.Fatalf("%d draws, want one per pass", len(draws))
	}
	for _, d := range draws {
		if d.Effect != "Outline" {
			t.Errorf("draw used effect %q", d.Effect)
		}
	}

	eff.Release()
	if err := m.Draw(); err == nil {
		t.Error("drawing with a released shader should fail")
	}
}

func TestDrawRendersTexture(t *testing.T) {
	dev := raster.New(8, 8)
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 255, 255
	}
	tex, _ := dev.NewTexture(img)
	reg := NewRegistry()

	full := []math.Vec2{{X: 0, Y: 0}, {X: 8, Y: 0}, {X: 0, Y: 8}, {X: 8, Y: 8}}
	uv := []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	m, err := New(Config{Device: dev, Registry: reg, Texture: tex}, Geometry{
		Positions: full, TexCoords: uv, Color: gpu.White, Indices: squareIndices,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Draw(); err != nil {
		t.Fatal(err)
	}
	if got := dev.FrameBuffer().At(4, 4); got.R != 255 || got.G != 0 || got.A != 255 {
		t.Errorf("center pixel = %v, want opaque red", got)
	}
}

func TestDrawReleasedTexture(t *testing.T) {
	f := newFixture(t)
	m := f.square(t)
	f.tex.Release()

	if err := m.Draw(); !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("got %v, want ErrInvalidTexture", err)
	}
	if err := m.SetTexture(f.tex); !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("SetTexture(released): got %v", err)
	}
}

func TestSetters(t *testing.T) {
	f := newFixture(t)
	m := f.square(t)

	if err := m.SetPosition(3, math.Vec2{X: 5, Y: 6}); err != nil {
		t.Fatal(err)
	}
	if got := m.Vertices[3].Position.XY(); got != (math.Vec2{X: 5, Y: 6}) {
		t.Errorf("position = %v", got)
	}
	if err := m.SetTexCoord(1, math.Vec2{X: 0.5, Y: 0.25}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetColor(2, gpu.HotPink); err != nil {
		t.Fatal(err)
	}
	if m.Vertices[2].Color != gpu.HotPink {
		t.Error("color not applied")
	}

	if err := m.SetPosition(4, math.Vec2{}); !errors.Is(err, ErrSlotOutOfRange) {
		t.Errorf("slot 4: got %v", err)
	}
	if err := m.SetColor(-1, gpu.Red); !errors.Is(err, ErrSlotOutOfRange) {
		t.Errorf("slot -1: got %v", err)
	}
	if err := m.SetTexCoord(0, math.Vec2{X: -0.1}); !errors.Is(err, ErrTexCoordRange) {
		t.Errorf("texcoord: got %v", err)
	}
	if err := m.SetPosition(0, math.Vec2{X: float32(gomath.NaN())}); !errors.Is(err, ErrNotFinite) {
		t.Errorf("NaN position: got %v", err)
	}
}

func TestDispose(t *testing.T) {
	f := newFixture(t)
	m := f.square(t)
	if err := m.Draw(); err != nil {
		t.Fatal(err)
	}
	id := m.ID()
	f.dev.ResetCalls()

	m.Dispose()
	m.Dispose()

	if !m.Disposed() {
		t.Fatal("Disposed() = false")
	}
	if m.Vertices != nil || m.Texture != nil || m.Shader != nil {
		t.Error("references survived Dispose")
	}
	if _, err := f.reg.Lookup(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("disposed mesh still registered: %v", err)
	}

	released := 0
	for _, op := range f.dev.Ops() {
		if op == raster.OpReleaseVertexBuffer || op == raster.OpReleaseIndexBuffer {
			released++
		}
	}
	if released != 2 {
		t.Errorf("%d buffer releases, want 2 across both Dispose calls", released)
	}
	if f.tex.Released() {
		t.Error("Dispose must not release the borrowed texture")
	}

	for name, err := range map[string]error{
		"Draw":              m.Draw(),
		"Reset":             m.Reset(),
		"ApplyTranslation":  m.ApplyTranslation(math.Vec2{X: 1}),
		"UpdateIndexBuffer": m.UpdateIndexBuffer([]int32{0, 1, 2}),
		"SetColor":          m.SetColor(0, gpu.Red),
		"SetShader":         m.SetShader(nil),
	} {
		if !errors.Is(err, ErrDisposed) {
			t.Errorf("%s after Dispose: got %v, want ErrDisposed", name, err)
		}
	}
}

// Package mesh implements textured triangle meshes with in-place transforms,
// lazily (re)allocated GPU buffers and a registry that addresses meshes by
// integer ID.
//
// Mesh positions are screen pixels (origin top-left, Y down). Every triangle
// must be wound clockwise on screen; Draw rejects counter-clockwise ones.
package mesh

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Config holds the collaborators a mesh is bound to.
type Config struct {
	Device   gpu.Device
	Registry *Registry
	Texture  gpu.Texture
	Shader   gpu.Effect // optional
}

// Geometry describes the initial vertex data. Use either Positions with
// TexCoords (plus Color or per-vertex Colors) or prebuilt Vertices. Indices
// is optional; without it the vertex count must be a multiple of 3.
type Geometry struct {
	Positions []math.Vec2
	TexCoords []math.Vec2
	Color     gpu.Color
	Colors    []gpu.Color

	Vertices []gpu.VertexPositionColorTexture

	Indices []int32
}

// Mesh is a textured triangle mesh.
//
// Vertices may be edited directly between draws. If its length changes, a
// custom index array no longer applies and the mesh reverts to sequential
// indexing at the next Draw.
type Mesh struct {
	Vertices []gpu.VertexPositionColorTexture
	Texture  gpu.Texture
	Shader   gpu.Effect

	id       ID
	device   gpu.Device
	registry *Registry
	defaults []gpu.VertexPositionColorTexture

	indices       []int32
	customIndices bool
	indicesDirty  bool
	lastLen       int

	vb gpu.VertexBuffer
	ib gpu.IndexBuffer

	disposed bool
	log      *zap.Logger
}

// New validates the geometry, stores a copy as the reset snapshot and
// registers the mesh under a fresh ID.
func New(cfg Config, geom Geometry) (*Mesh, error) {
	if cfg.Device == nil {
		return nil, ErrNoDevice
	}
	if cfg.Registry == nil {
		return nil, ErrNoRegistry
	}
	if cfg.Texture == nil || cfg.Texture.Released() {
		return nil, ErrInvalidTexture
	}

	verts, err := buildVertices(geom)
	if err != nil {
		return nil, err
	}

	m := &Mesh{
		Vertices: verts,
		Texture:  cfg.Texture,
		Shader:   cfg.Shader,
		device:   cfg.Device,
		registry: cfg.Registry,
		defaults: clone(verts),
		lastLen:  len(verts),
		log:      logger.Named("mesh"),
	}

	if geom.Indices != nil {
		if err := checkIndices(geom.Indices, len(verts)); err != nil {
			return nil, err
		}
		m.indices = append([]int32(nil), geom.Indices...)
		m.customIndices = true
	} else {
		if len(verts)%3 != 0 {
			return nil, fmt.Errorf("%w: got %d", ErrVertexCount, len(verts))
		}
		m.indices = sequential(len(verts))
	}
	m.indicesDirty = true

	m.id = cfg.Registry.register(m)
	m.log.Debug("mesh created",
		zap.Int("id", int(m.id)),
		zap.Int("vertices", len(verts)),
		zap.Bool("custom_indices", m.customIndices),
	)
	return m, nil
}

func buildVertices(geom Geometry) ([]gpu.VertexPositionColorTexture, error) {
	if geom.Vertices != nil {
		if geom.Positions != nil || geom.TexCoords != nil || geom.Colors != nil {
			return nil, ErrConflictingGeometry
		}
		if len(geom.Vertices) == 0 {
			return nil, ErrEmptyGeometry
		}
		for i, v := range geom.Vertices {
			if !gpu.ValidTexCoord(v.TexCoord) {
				return nil, texCoordError(i, v.TexCoord)
			}
		}
		return clone(geom.Vertices), nil
	}

	if geom.Positions == nil {
		return nil, fmt.Errorf("%w: position array", ErrNilArray)
	}
	if geom.TexCoords == nil {
		return nil, fmt.Errorf("%w: texture coordinate array", ErrNilArray)
	}
	if len(geom.Positions) == 0 {
		return nil, ErrEmptyGeometry
	}
	if len(geom.Positions) != len(geom.TexCoords) {
		return nil, fmt.Errorf("%w: %d positions, %d texture coordinates",
			ErrLengthMismatch, len(geom.Positions), len(geom.TexCoords))
	}
	if geom.Colors != nil && len(geom.Colors) != len(geom.Positions) {
		return nil, fmt.Errorf("%w: %d positions, %d colors",
			ErrLengthMismatch, len(geom.Positions), len(geom.Colors))
	}

	verts := make([]gpu.VertexPositionColorTexture, len(geom.Positions))
	for i, p := range geom.Positions {
		uv := geom.TexCoords[i]
		if !gpu.ValidTexCoord(uv) {
			return nil, texCoordError(i, uv)
		}
		c := geom.Color
		if geom.Colors != nil {
			c = geom.Colors[i]
		}
		verts[i] = gpu.VertexPositionColorTexture{
			Position: math.Extend(p, 0),
			Color:    c,
			TexCoord: uv,
		}
	}
	return verts, nil
}

func texCoordError(i int, uv math.Vec2) error {
	return fmt.Errorf("%w: textureCoords[%d] had invalid values (X: %v, Y: %v), expected values between 0 and 1 inclusive",
		ErrTexCoordRange, i, uv.X, uv.Y)
}

func checkIndices(indices []int32, vertexCount int) error {
	if len(indices) == 0 || len(indices)%3 != 0 {
		return fmt.Errorf("%w: got %d", ErrIndexCount, len(indices))
	}
	for i, idx := range indices {
		if idx < 0 || int(idx) >= vertexCount {
			return fmt.Errorf("%w: indices[%d] = %d, %d vertices", ErrIndexRange, i, idx, vertexCount)
		}
	}
	return nil
}

func sequential(n int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(i)
	}
	return out
}

func clone(v []gpu.VertexPositionColorTexture) []gpu.VertexPositionColorTexture {
	return append([]gpu.VertexPositionColorTexture(nil), v...)
}

// ID returns the mesh's registry handle.
func (m *Mesh) ID() ID {
	return m.id
}

// Disposed reports whether Dispose has been called.
func (m *Mesh) Disposed() bool {
	return m.disposed
}

// HasCustomIndices reports whether a caller-supplied index array is in effect.
func (m *Mesh) HasCustomIndices() bool {
	return m.customIndices
}

// Indices returns a copy of the active index array.
func (m *Mesh) Indices() []int32 {
	return append([]int32(nil), m.indices...)
}

// PrimitiveCount returns the number of triangles the next Draw issues.
func (m *Mesh) PrimitiveCount() int {
	if m.customIndices && len(m.Vertices) == m.lastLen {
		return len(m.indices) / 3
	}
	return len(m.Vertices) / 3
}

// UpdateIndexBuffer replaces the index array. The slice is copied.
func (m *Mesh) UpdateIndexBuffer(indices []int32) error {
	if m.disposed {
		return ErrDisposed
	}
	if err := checkIndices(indices, len(m.Vertices)); err != nil {
		return err
	}
	m.indices = append([]int32(nil), indices...)
	m.customIndices = true
	m.indicesDirty = true
	m.lastLen = len(m.Vertices)
	return nil
}

// Draw uploads the vertices and issues an indexed triangle-list draw, once
// per shader pass when a shader is set.
func (m *Mesh) Draw() error {
	if m.disposed {
		return ErrDisposed
	}
	if err := m.prepare(); err != nil {
		m.log.Debug("mesh draw rejected", zap.Int("id", int(m.id)), zap.Error(err))
		return err
	}
	if err := m.ensureBuffers(); err != nil {
		return fmt.Errorf("mesh %d: %w", m.id, err)
	}

	d := m.device
	d.SetTexture(0, m.Texture)
	// Winding is validated above; keep back faces anyway
	d.SetRenderState(gpu.DefaultRenderState)

	n := len(m.Vertices)
	prims := len(m.indices) / 3

	if m.Shader == nil {
		if err := d.DrawIndexedPrimitives(gpu.TriangleList, 0, n, 0, prims); err != nil {
			return fmt.Errorf("mesh %d: %w", m.id, err)
		}
	} else {
		for i, pass := range m.Shader.Passes() {
			if err := pass.Apply(); err != nil {
				return fmt.Errorf("mesh %d: shader %s pass %d: %w", m.id, m.Shader.Name(), i, err)
			}
			// The pass may have rebound slot 0
			if d.Texture(0) != m.Texture {
				d.SetTexture(0, m.Texture)
			}
			if err := d.DrawIndexedPrimitives(gpu.TriangleList, 0, n, 0, prims); err != nil {
				return fmt.Errorf("mesh %d: %w", m.id, err)
			}
		}
	}

	m.log.Debug("mesh drawn",
		zap.Int("id", int(m.id)),
		zap.Int("vertices", n),
		zap.Int("primitives", prims),
	)
	return nil
}

// prepare validates the texture, the triangle-count invariant and the winding
// of every triangle. It reverts custom indices when the vertex count changed.
func (m *Mesh) prepare() error {
	if m.Texture == nil || m.Texture.Released() {
		return ErrInvalidTexture
	}
	n := len(m.Vertices)
	if n == 0 {
		return ErrEmptyGeometry
	}

	if n != m.lastLen && m.customIndices {
		m.log.Debug("vertex count changed, reverting to sequential indices",
			zap.Int("id", int(m.id)),
			zap.Int("was", m.lastLen),
			zap.Int("now", n),
		)
		m.customIndices = false
		m.indices = sequential(n)
		m.indicesDirty = true
	}

	if m.customIndices {
		if err := checkIndices(m.indices, n); err != nil {
			return err
		}
	} else {
		if n%3 != 0 {
			return fmt.Errorf("%w: got %d", ErrVertexCount, n)
		}
		if len(m.indices) != n {
			m.indices = sequential(n)
			m.indicesDirty = true
		}
	}

	return m.checkWinding()
}

// checkWinding rejects triangles whose signed area is negative in screen
// space, i.e. counter-clockwise with Y down. Degenerate triangles pass.
func (m *Mesh) checkWinding() error {
	for i := 0; i+2 < len(m.indices); i += 3 {
		i0, i1, i2 := m.indices[i], m.indices[i+1], m.indices[i+2]
		a := m.Vertices[i0].Position.XY()
		b := m.Vertices[i1].Position.XY()
		c := m.Vertices[i2].Position.XY()

		if b.Sub(a).Cross(c.Sub(a)) < 0 {
			return fmt.Errorf("%w (vertices: %d, %d, %d)", ErrCounterClockwise, i0, i1, i2)
		}
	}
	return nil
}

// ensureBuffers (re)allocates the GPU buffers when missing, released or sized
// for a different count, then uploads vertex and, if changed, index data.
func (m *Mesh) ensureBuffers() error {
	d := m.device
	n := len(m.Vertices)

	if m.vb == nil || m.vb.Released() || m.vb.Len() != n {
		if m.vb != nil {
			m.vb.Release()
		}
		vb, err := d.NewVertexBuffer(gpu.FormatPositionColorTexture, n, gpu.UsageWriteOnly)
		if err != nil {
			return err
		}
		m.vb = vb
	}

	if m.ib == nil || m.ib.Released() || m.ib.Len() != len(m.indices) {
		if m.ib != nil {
			m.ib.Release()
		}
		ib, err := d.NewIndexBuffer(len(m.indices), gpu.UsageWriteOnly)
		if err != nil {
			return err
		}
		m.ib = ib
		m.indicesDirty = true
	}
	if m.indicesDirty {
		if err := m.ib.SetData(m.indices); err != nil {
			return err
		}
		m.indicesDirty = false
	}

	// Buffers cannot receive data while bound
	if err := d.SetVertexBuffer(nil); err != nil {
		return err
	}
	if err := m.vb.SetData(gpu.TexturedVertices(m.Vertices)); err != nil {
		return err
	}
	if err := d.SetVertexBuffer(m.vb); err != nil {
		return err
	}
	if err := d.SetIndexBuffer(m.ib); err != nil {
		return err
	}

	m.lastLen = n
	return nil
}

// Reset restores the vertices captured at construction.
func (m *Mesh) Reset() error {
	if m.disposed {
		return ErrDisposed
	}
	if len(m.Vertices) != len(m.defaults) {
		m.Vertices = make([]gpu.VertexPositionColorTexture, len(m.defaults))
	}
	copy(m.Vertices, m.defaults)
	return nil
}

// Dispose releases the GPU buffers, drops the texture, shader and vertex
// references and removes the mesh from its registry. The texture and shader
// themselves are not released. Calling Dispose again is a no-op.
func (m *Mesh) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true

	if m.vb != nil {
		m.vb.Release()
		m.vb = nil
	}
	if m.ib != nil {
		m.ib.Release()
		m.ib = nil
	}

	m.Vertices = nil
	m.defaults = nil
	m.indices = nil
	m.Texture = nil
	m.Shader = nil

	m.registry.remove(m.id)
	m.log.Debug("mesh disposed", zap.Int("id", int(m.id)))
}

// SetPosition moves vertex slot to p, keeping its depth.
func (m *Mesh) SetPosition(slot int, p math.Vec2) error {
	if err := m.checkSlot(slot); err != nil {
		return err
	}
	if !p.IsFinite() {
		return fmt.Errorf("%w: position %v", ErrNotFinite, p)
	}
	m.Vertices[slot].Position = m.Vertices[slot].Position.WithXY(p)
	return nil
}

// SetTexCoord sets the texture coordinate of vertex slot.
func (m *Mesh) SetTexCoord(slot int, uv math.Vec2) error {
	if err := m.checkSlot(slot); err != nil {
		return err
	}
	if !gpu.ValidTexCoord(uv) {
		return texCoordError(slot, uv)
	}
	m.Vertices[slot].TexCoord = uv
	return nil
}

// SetColor sets the color of vertex slot.
func (m *Mesh) SetColor(slot int, c gpu.Color) error {
	if err := m.checkSlot(slot); err != nil {
		return err
	}
	m.Vertices[slot].Color = c
	return nil
}

// SetTexture replaces the borrowed texture.
func (m *Mesh) SetTexture(tex gpu.Texture) error {
	if m.disposed {
		return ErrDisposed
	}
	if tex == nil || tex.Released() {
		return ErrInvalidTexture
	}
	m.Texture = tex
	return nil
}

// SetShader replaces the borrowed shader; nil draws with the device default.
func (m *Mesh) SetShader(e gpu.Effect) error {
	if m.disposed {
		return ErrDisposed
	}
	m.Shader = e
	return nil
}

func (m *Mesh) checkSlot(slot int) error {
	if m.disposed {
		return ErrDisposed
	}
	if slot < 0 || slot >= len(m.Vertices) {
		return fmt.Errorf("%w: slot %d, %d vertices", ErrSlotOutOfRange, slot, len(m.Vertices))
	}
	return nil
}

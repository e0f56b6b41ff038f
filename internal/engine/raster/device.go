// Package raster implements gpu.Device on the CPU.
//
// The device rasterizes lines and triangles into an in-memory frame buffer
// and records every call it receives, which makes it the backend for the
// package tests and for headless frame capture.
package raster

import (
	"fmt"
	"image"
	"image/draw"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// MaxTextureSlots is the number of sampler slots the device exposes.
const MaxTextureSlots = 8

// Device is a software gpu.Device.
type Device struct {
	fb *FrameBuffer

	vb       *VertexBuffer
	ib       *IndexBuffer
	textures [MaxTextureSlots]gpu.Texture
	state    gpu.RenderState

	// applied is the effect pass applied since the last SetVertexBuffer.
	applied *Effect

	calls  []Call
	record bool
}

// New creates a device rendering into a width x height frame buffer.
func New(width, height int) *Device {
	logger.Named("raster").Debug("software device created",
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return &Device{
		fb:     NewFrameBuffer(width, height),
		state:  gpu.DefaultRenderState,
		record: true,
	}
}

// FrameBuffer returns the render target.
func (d *Device) FrameBuffer() *FrameBuffer {
	return d.fb
}

// Clear fills the render target with c.
func (d *Device) Clear(c gpu.Color) {
	d.fb.Clear(c)
}

// Image returns a copy of the current frame.
func (d *Device) Image() *image.NRGBA {
	return d.fb.Image()
}

// Size implements gpu.Device.
func (d *Device) Size() (int, int) {
	return d.fb.Width, d.fb.Height
}

// SetRecording enables or disables call recording. Long captures turn it off.
func (d *Device) SetRecording(on bool) {
	d.record = on
}

// Calls returns the recorded calls in order.
func (d *Device) Calls() []Call {
	return append([]Call(nil), d.calls...)
}

// Ops returns the recorded operation sequence.
func (d *Device) Ops() []Op {
	ops := make([]Op, len(d.calls))
	for i, c := range d.calls {
		ops[i] = c.Op
	}
	return ops
}

// Draws returns only the recorded draw calls.
func (d *Device) Draws() []Call {
	var draws []Call
	for _, c := range d.calls {
		if c.Op == OpDraw || c.Op == OpDrawIndexed {
			draws = append(draws, c)
		}
	}
	return draws
}

// ResetCalls clears the call log.
func (d *Device) ResetCalls() {
	d.calls = d.calls[:0]
}

func (d *Device) log(c Call) {
	if d.record {
		d.calls = append(d.calls, c)
	}
}

// NewVertexBuffer implements gpu.Device.
func (d *Device) NewVertexBuffer(format gpu.VertexFormat, count int, usage gpu.BufferUsage) (gpu.VertexBuffer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: vertex count %d", gpu.ErrInvalidSize, count)
	}
	d.log(Call{Op: OpCreateVertexBuffer, Format: format, Count: count})
	return &VertexBuffer{device: d, format: format, capacity: count, usage: usage}, nil
}

// NewIndexBuffer implements gpu.Device.
func (d *Device) NewIndexBuffer(count int, usage gpu.BufferUsage) (gpu.IndexBuffer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: index count %d", gpu.ErrInvalidSize, count)
	}
	d.log(Call{Op: OpCreateIndexBuffer, Count: count})
	return &IndexBuffer{device: d, capacity: count, usage: usage}, nil
}

// NewTexture implements gpu.Device. The pixels are copied.
func (d *Device) NewTexture(img *image.NRGBA) (gpu.Texture, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty texture image", gpu.ErrInvalidSize)
	}
	b := img.Bounds()
	cp := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(cp, cp.Bounds(), img, b.Min, draw.Src)
	return &Texture{img: cp}, nil
}

// NewVertexColorEffect implements gpu.Device.
func (d *Device) NewVertexColorEffect() (gpu.Effect, error) {
	return d.NewEffect("VertexColor", 1), nil
}

// NewEffect creates a recording effect with the given number of passes.
// Passes only select the effect; shading stays the built-in pipeline.
func (d *Device) NewEffect(name string, passes int) *Effect {
	e := &Effect{device: d, name: name}
	for i := 0; i < passes; i++ {
		e.passes = append(e.passes, &Pass{effect: e, index: i})
	}
	return e
}

// SetVertexBuffer implements gpu.Device.
func (d *Device) SetVertexBuffer(vb gpu.VertexBuffer) error {
	d.applied = nil
	if vb == nil {
		d.vb = nil
		d.log(Call{Op: OpSetVertexBuffer, Clear: true})
		return nil
	}
	buf, ok := vb.(*VertexBuffer)
	if !ok || buf.device != d {
		return fmt.Errorf("raster: vertex buffer %T belongs to another device", vb)
	}
	if buf.released {
		return gpu.ErrBufferReleased
	}
	d.vb = buf
	d.log(Call{Op: OpSetVertexBuffer, Format: buf.format, Count: buf.capacity})
	return nil
}

// SetIndexBuffer implements gpu.Device.
func (d *Device) SetIndexBuffer(ib gpu.IndexBuffer) error {
	if ib == nil {
		d.ib = nil
		d.log(Call{Op: OpSetIndexBuffer, Clear: true})
		return nil
	}
	buf, ok := ib.(*IndexBuffer)
	if !ok || buf.device != d {
		return fmt.Errorf("raster: index buffer %T belongs to another device", ib)
	}
	if buf.released {
		return gpu.ErrBufferReleased
	}
	d.ib = buf
	d.log(Call{Op: OpSetIndexBuffer, Count: buf.capacity})
	return nil
}

// SetTexture implements gpu.Device. Out-of-range slots are ignored.
func (d *Device) SetTexture(slot int, tex gpu.Texture) {
	if slot < 0 || slot >= MaxTextureSlots {
		return
	}
	d.textures[slot] = tex
	d.log(Call{Op: OpSetTexture, Slot: slot, Texture: tex})
}

// Texture implements gpu.Device.
func (d *Device) Texture(slot int) gpu.Texture {
	if slot < 0 || slot >= MaxTextureSlots {
		return nil
	}
	return d.textures[slot]
}

// SetRenderState implements gpu.Device.
func (d *Device) SetRenderState(state gpu.RenderState) {
	d.state = state
	d.log(Call{Op: OpSetRenderState, State: state})
}

// DrawPrimitives implements gpu.Device.
func (d *Device) DrawPrimitives(topology gpu.Topology, startVertex, primitiveCount int) error {
	if d.vb == nil {
		return gpu.ErrNoVertexBuffer
	}
	n := topology.VertexCount(primitiveCount)
	if startVertex < 0 || primitiveCount <= 0 || startVertex+n > d.vb.written {
		return fmt.Errorf("%w: %d %s primitives from vertex %d, %d vertices uploaded",
			gpu.ErrDrawRange, primitiveCount, topology, startVertex, d.vb.written)
	}
	d.log(Call{Op: OpDraw, Topology: topology, Start: startVertex, Count: primitiveCount, Effect: d.effectName()})

	verts := d.transform(startVertex, n)
	d.assemble(topology, func(i int) vertex { return verts[i] }, n)
	return nil
}

// DrawIndexedPrimitives implements gpu.Device.
func (d *Device) DrawIndexedPrimitives(topology gpu.Topology, baseVertex, numVertices, startIndex, primitiveCount int) error {
	if d.vb == nil {
		return gpu.ErrNoVertexBuffer
	}
	if d.ib == nil {
		return gpu.ErrNoIndexBuffer
	}
	n := topology.VertexCount(primitiveCount)
	if startIndex < 0 || primitiveCount <= 0 || startIndex+n > d.ib.written {
		return fmt.Errorf("%w: %d indices from %d, %d uploaded",
			gpu.ErrDrawRange, n, startIndex, d.ib.written)
	}
	if baseVertex < 0 || numVertices <= 0 || baseVertex+numVertices > d.vb.written {
		return fmt.Errorf("%w: vertices [%d,%d), %d uploaded",
			gpu.ErrDrawRange, baseVertex, baseVertex+numVertices, d.vb.written)
	}
	indices := d.ib.data[startIndex : startIndex+n]
	for _, idx := range indices {
		if idx < 0 || int(idx) >= numVertices {
			return fmt.Errorf("%w: index %d outside %d vertices", gpu.ErrDrawRange, idx, numVertices)
		}
	}
	d.log(Call{
		Op:          OpDrawIndexed,
		Topology:    topology,
		BaseVertex:  baseVertex,
		NumVertices: numVertices,
		Start:       startIndex,
		Count:       primitiveCount,
		Effect:      d.effectName(),
	})

	verts := d.transform(baseVertex, numVertices)
	d.assemble(topology, func(i int) vertex { return verts[indices[i]] }, n)
	return nil
}

func (d *Device) effectName() string {
	if d.applied == nil {
		return ""
	}
	return d.applied.name
}

// transform converts count bound vertices starting at first into pixel space.
func (d *Device) transform(first, count int) []vertex {
	w, h := float32(d.fb.Width), float32(d.fb.Height)
	out := make([]vertex, count)

	switch d.vb.format {
	case gpu.FormatPositionColor:
		for i, v := range d.vb.colored[first : first+count] {
			p := math.NDCToScreen(v.Position, w, h)
			out[i] = vertex{x: float64(p.X), y: float64(p.Y), color: v.Color}
		}
	case gpu.FormatPositionColorTexture:
		for i, v := range d.vb.textured[first : first+count] {
			out[i] = vertex{
				x:     float64(v.Position.X),
				y:     float64(v.Position.Y),
				color: v.Color,
				u:     float64(v.TexCoord.X),
				v:     float64(v.TexCoord.Y),
			}
		}
	}
	return out
}

// assemble walks n vertices fetched through at and rasterizes the primitives
// the topology forms.
func (d *Device) assemble(topology gpu.Topology, at func(int) vertex, n int) {
	var tex *image.NRGBA
	if d.vb.format == gpu.FormatPositionColorTexture {
		if t, ok := d.textures[0].(*Texture); ok && !t.released {
			tex = t.img
		}
	}

	switch topology {
	case gpu.LineList:
		for i := 0; i+1 < n; i += 2 {
			rasterizeLine(d.fb, at(i), at(i+1), d.state)
		}
	case gpu.LineStrip:
		for i := 0; i+1 < n; i++ {
			rasterizeLine(d.fb, at(i), at(i+1), d.state)
		}
	case gpu.TriangleList:
		for i := 0; i+2 < n; i += 3 {
			rasterizeTriangle(d.fb, at(i), at(i+1), at(i+2), tex, d.state)
		}
	case gpu.TriangleStrip:
		for i := 0; i+2 < n; i++ {
			// Odd triangles swap to keep a consistent winding
			if i%2 == 0 {
				rasterizeTriangle(d.fb, at(i), at(i+1), at(i+2), tex, d.state)
			} else {
				rasterizeTriangle(d.fb, at(i+1), at(i), at(i+2), tex, d.state)
			}
		}
	}
}

// LastVertices returns the most recently uploaded vertex data, or nil.
func (d *Device) LastVertices() gpu.Vertices {
	for i := len(d.calls) - 1; i >= 0; i-- {
		if d.calls[i].Op == OpUploadVertices {
			return d.calls[i].Vertices
		}
	}
	return nil
}

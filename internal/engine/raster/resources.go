package raster

import (
	"fmt"
	"image"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
)

// VertexBuffer is CPU-side vertex storage.
type VertexBuffer struct {
	device   *Device
	format   gpu.VertexFormat
	capacity int
	usage    gpu.BufferUsage
	released bool

	colored  []gpu.VertexPositionColor
	textured []gpu.VertexPositionColorTexture
	written  int
}

// Format implements gpu.VertexBuffer.
func (b *VertexBuffer) Format() gpu.VertexFormat { return b.format }

// Len implements gpu.VertexBuffer.
func (b *VertexBuffer) Len() int { return b.capacity }

// Released implements gpu.VertexBuffer.
func (b *VertexBuffer) Released() bool { return b.released }

// SetData implements gpu.VertexBuffer.
func (b *VertexBuffer) SetData(v gpu.Vertices) error {
	if b.released {
		return gpu.ErrBufferReleased
	}
	if b.device.vb == b {
		return gpu.ErrBufferBound
	}
	if v.Format() != b.format {
		return fmt.Errorf("%w: buffer holds %s, got %s", gpu.ErrFormatMismatch, b.format, v.Format())
	}
	if v.Len() > b.capacity {
		return fmt.Errorf("%w: %d vertices into %d", gpu.ErrBufferOverflow, v.Len(), b.capacity)
	}

	var snapshot gpu.Vertices
	switch data := v.(type) {
	case gpu.ColoredVertices:
		b.colored = append(b.colored[:0], data...)
		snapshot = append(gpu.ColoredVertices(nil), data...)
	case gpu.TexturedVertices:
		b.textured = append(b.textured[:0], data...)
		snapshot = append(gpu.TexturedVertices(nil), data...)
	default:
		return fmt.Errorf("%w: unsupported vertex data %T", gpu.ErrFormatMismatch, v)
	}
	b.written = v.Len()
	if b.device.record {
		b.device.log(Call{Op: OpUploadVertices, Format: b.format, Count: b.written, Vertices: snapshot})
	}
	return nil
}

// Release implements gpu.VertexBuffer. Releasing twice is a no-op.
func (b *VertexBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.colored, b.textured = nil, nil
	if b.device.vb == b {
		b.device.vb = nil
	}
	b.device.log(Call{Op: OpReleaseVertexBuffer, Format: b.format, Count: b.capacity})
}

// IndexBuffer is CPU-side index storage.
type IndexBuffer struct {
	device   *Device
	capacity int
	usage    gpu.BufferUsage
	released bool

	data    []int32
	written int
}

// Len implements gpu.IndexBuffer.
func (b *IndexBuffer) Len() int { return b.capacity }

// Released implements gpu.IndexBuffer.
func (b *IndexBuffer) Released() bool { return b.released }

// SetData implements gpu.IndexBuffer.
func (b *IndexBuffer) SetData(indices []int32) error {
	if b.released {
		return gpu.ErrBufferReleased
	}
	if len(indices) > b.capacity {
		return fmt.Errorf("%w: %d indices into %d", gpu.ErrBufferOverflow, len(indices), b.capacity)
	}
	b.data = append(b.data[:0], indices...)
	b.written = len(indices)
	b.device.log(Call{Op: OpUploadIndices, Count: b.written, Indices: append([]int32(nil), indices...)})
	return nil
}

// Release implements gpu.IndexBuffer. Releasing twice is a no-op.
func (b *IndexBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.data = nil
	if b.device.ib == b {
		b.device.ib = nil
	}
	b.device.log(Call{Op: OpReleaseIndexBuffer, Count: b.capacity})
}

// Texture is an NRGBA image held in memory.
type Texture struct {
	img      *image.NRGBA
	released bool
}

// NewTexture wraps img without copying. Useful for tests that need a texture
// without a device.
func NewTexture(img *image.NRGBA) *Texture {
	return &Texture{img: img}
}

// Width implements gpu.Texture.
func (t *Texture) Width() int { return t.img.Rect.Dx() }

// Height implements gpu.Texture.
func (t *Texture) Height() int { return t.img.Rect.Dy() }

// Released implements gpu.Texture.
func (t *Texture) Released() bool { return t.released }

// Release implements gpu.Texture.
func (t *Texture) Release() { t.released = true }

// Image returns the texture pixels.
func (t *Texture) Image() *image.NRGBA { return t.img }

// Effect is a recording effect: applying a pass marks it active for the next
// draws until the vertex buffer binding changes.
type Effect struct {
	device   *Device
	name     string
	passes   []*Pass
	released bool
}

// Name implements gpu.Effect.
func (e *Effect) Name() string { return e.name }

// Passes implements gpu.Effect.
func (e *Effect) Passes() []gpu.Pass {
	out := make([]gpu.Pass, len(e.passes))
	for i, p := range e.passes {
		out[i] = p
	}
	return out
}

// Release implements gpu.Effect.
func (e *Effect) Release() { e.released = true }

// Released reports whether Release has been called.
func (e *Effect) Released() bool { return e.released }

// Pass is one pass of a raster Effect.
type Pass struct {
	effect *Effect
	index  int
}

// Apply implements gpu.Pass.
func (p *Pass) Apply() error {
	if p.effect.released {
		return fmt.Errorf("raster: effect %s has been released", p.effect.name)
	}
	d := p.effect.device
	d.applied = p.effect
	d.log(Call{Op: OpApplyPass, Effect: p.effect.name, Pass: p.index})
	return nil
}

package renderer

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Attribute locations shared with the GLSL sources.
const (
	attribPosition = 0
	attribColor    = 1
	attribTexCoord = 2
)

// VertexBuffer is a VBO with its own VAO describing the vertex format.
type VertexBuffer struct {
	device   *Device
	vao, vbo uint32
	format   gpu.VertexFormat
	capacity int
	released bool
	written  int
}

// NewVertexBuffer implements gpu.Device.
func (d *Device) NewVertexBuffer(format gpu.VertexFormat, count int, usage gpu.BufferUsage) (gpu.VertexBuffer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: vertex count %d", gpu.ErrInvalidSize, count)
	}
	stride := format.Stride()
	if stride == 0 {
		return nil, fmt.Errorf("%w: unknown format %s", gpu.ErrFormatMismatch, format)
	}

	b := &VertexBuffer{device: d, format: format, capacity: count}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, count*stride, nil, glUsage(usage))

	// Position (xyz), then RGBA8 color normalized to 0-1
	gl.VertexAttribPointerWithOffset(attribPosition, 3, gl.FLOAT, false, int32(stride), 0)
	gl.EnableVertexAttribArray(attribPosition)
	gl.VertexAttribPointerWithOffset(attribColor, 4, gl.UNSIGNED_BYTE, true, int32(stride), 3*4)
	gl.EnableVertexAttribArray(attribColor)
	if format == gpu.FormatPositionColorTexture {
		gl.VertexAttribPointerWithOffset(attribTexCoord, 2, gl.FLOAT, false, int32(stride), 3*4+4)
		gl.EnableVertexAttribArray(attribTexCoord)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	d.restoreVertexArray()

	d.log.Debug("vertex buffer created",
		zap.Stringer("format", format),
		zap.Int("count", count),
		zap.Uint32("vao", b.vao),
		zap.Uint32("vbo", b.vbo),
	)
	return b, nil
}

// restoreVertexArray rebinds the VAO of the bound vertex buffer.
func (d *Device) restoreVertexArray() {
	if d.vb != nil {
		gl.BindVertexArray(d.vb.vao)
		return
	}
	gl.BindVertexArray(0)
}

// Format implements gpu.VertexBuffer.
func (b *VertexBuffer) Format() gpu.VertexFormat { return b.format }

// Len implements gpu.VertexBuffer.
func (b *VertexBuffer) Len() int { return b.capacity }

// Released implements gpu.VertexBuffer.
func (b *VertexBuffer) Released() bool { return b.released }

// SetData implements gpu.VertexBuffer. The Go vertex structs match the GPU
// layout byte for byte, so slices upload without conversion.
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

	var ptr unsafe.Pointer
	switch data := v.(type) {
	case gpu.ColoredVertices:
		if len(data) > 0 {
			ptr = unsafe.Pointer(&data[0])
		}
	case gpu.TexturedVertices:
		if len(data) > 0 {
			ptr = unsafe.Pointer(&data[0])
		}
	default:
		return fmt.Errorf("%w: unsupported vertex data %T", gpu.ErrFormatMismatch, v)
	}

	b.written = v.Len()
	if ptr == nil {
		return nil
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, v.Len()*b.format.Stride(), ptr)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// Release implements gpu.VertexBuffer. Releasing twice is a no-op.
func (b *VertexBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	if b.device.vb == b {
		b.device.vb = nil
		gl.BindVertexArray(0)
	}
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteVertexArrays(1, &b.vao)
	b.vbo, b.vao = 0, 0
}

// IndexBuffer is an element buffer of 32-bit indices.
type IndexBuffer struct {
	device   *Device
	ebo      uint32
	capacity int
	released bool
	written  int
}

// NewIndexBuffer implements gpu.Device.
func (d *Device) NewIndexBuffer(count int, usage gpu.BufferUsage) (gpu.IndexBuffer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: index count %d", gpu.ErrInvalidSize, count)
	}
	b := &IndexBuffer{device: d, capacity: count}

	gl.BindVertexArray(d.uploadVAO)
	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, count*4, nil, glUsage(usage))
	d.restoreVertexArray()

	d.log.Debug("index buffer created", zap.Int("count", count), zap.Uint32("ebo", b.ebo))
	return b, nil
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
	b.written = len(indices)
	if len(indices) == 0 {
		return nil
	}

	d := b.device
	gl.BindVertexArray(d.uploadVAO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, len(indices)*4, gl.Ptr(indices))
	d.restoreVertexArray()
	return nil
}

// Release implements gpu.IndexBuffer. Releasing twice is a no-op.
func (b *IndexBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	if b.device.ib == b {
		b.device.ib = nil
	}
	gl.DeleteBuffers(1, &b.ebo)
	b.ebo = 0
}

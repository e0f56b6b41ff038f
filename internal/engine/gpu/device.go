// Package gpu defines the graphics device abstraction that the primitive and
// mesh layers render through.
//
// Two devices implement it: renderer.Device drives OpenGL 4.1 and
// raster.Device rasterizes on the CPU into an image. All methods are meant to
// be called from the render thread only.
package gpu

import (
	"errors"
	"image"
)

// Errors returned by device implementations.
var (
	ErrBufferBound    = errors.New("gpu: buffer is bound to the device")
	ErrBufferReleased = errors.New("gpu: buffer has been released")
	ErrBufferOverflow = errors.New("gpu: data exceeds buffer capacity")
	ErrFormatMismatch = errors.New("gpu: vertex format mismatch")
	ErrNoVertexBuffer = errors.New("gpu: no vertex buffer bound")
	ErrNoIndexBuffer  = errors.New("gpu: no index buffer bound")
	ErrDrawRange      = errors.New("gpu: draw range exceeds bound data")
	ErrInvalidSize    = errors.New("gpu: invalid buffer size")
)

// BufferUsage hints how often buffer contents change.
type BufferUsage int

const (
	UsageStatic BufferUsage = iota
	UsageDynamic
	UsageWriteOnly
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullCounterClockwise
)

// BlendMode selects how fragments combine with the target.
type BlendMode int

const (
	BlendOpaque BlendMode = iota
	BlendAlpha
)

// RenderState is the fixed-function state applied before a draw.
type RenderState struct {
	Cull  CullMode
	Blend BlendMode
}

// DefaultRenderState is what primitives and meshes draw with.
var DefaultRenderState = RenderState{Cull: CullNone, Blend: BlendAlpha}

// VertexBuffer is GPU vertex storage with a fixed format and capacity.
//
// SetData fails with ErrBufferBound while the buffer is bound to its device;
// callers clear the binding first.
type VertexBuffer interface {
	Format() VertexFormat
	Len() int
	SetData(v Vertices) error
	Release()
	Released() bool
}

// IndexBuffer is GPU storage for 32-bit triangle indices.
type IndexBuffer interface {
	Len() int
	SetData(indices []int32) error
	Release()
	Released() bool
}

// Texture is a sampled image. The primitive and mesh layers borrow textures
// and never release them.
type Texture interface {
	Width() int
	Height() int
	Release()
	Released() bool
}

// Pass is one pass of an Effect. Apply binds its program and parameters.
type Pass interface {
	Apply() error
}

// Effect is a shader with one or more passes.
type Effect interface {
	Name() string
	Passes() []Pass
	Release()
}

// Device creates GPU resources and issues draw calls.
//
// When no effect pass has been applied since the last SetVertexBuffer, draws
// use the device's built-in program for the bound vertex format. Textured
// vertices are in screen pixels; colored vertices are normalized device
// coordinates.
type Device interface {
	NewVertexBuffer(format VertexFormat, count int, usage BufferUsage) (VertexBuffer, error)
	NewIndexBuffer(count int, usage BufferUsage) (IndexBuffer, error)
	NewTexture(img *image.NRGBA) (Texture, error)
	NewVertexColorEffect() (Effect, error)

	// SetVertexBuffer binds vb; nil clears the binding.
	SetVertexBuffer(vb VertexBuffer) error
	SetIndexBuffer(ib IndexBuffer) error
	SetTexture(slot int, tex Texture)
	Texture(slot int) Texture
	SetRenderState(state RenderState)

	DrawPrimitives(topology Topology, startVertex, primitiveCount int) error
	DrawIndexedPrimitives(topology Topology, baseVertex, numVertices, startIndex, primitiveCount int) error

	// Size returns the back buffer size in pixels.
	Size() (width, height int)
}

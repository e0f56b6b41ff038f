// Package renderer implements gpu.Device on OpenGL 4.1 core.
package renderer

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/engine/shader"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/math"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// MaxTextureSlots is the number of sampler slots the device binds.
const MaxTextureSlots = 8

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// program is a linked GL program with the uniforms the device feeds.
type program struct {
	id         uint32
	projection int32
	sampler    int32
}

func newProgram(src shader.Source) (*program, error) {
	id, err := shader.Compile(src)
	if err != nil {
		return nil, err
	}
	return &program{
		id:         id,
		projection: shader.GetUniform(id, shader.UniformProjection),
		sampler:    shader.GetUniform(id, shader.UniformTexture),
	}, nil
}

func (p *program) delete() {
	if p != nil && p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}

// Device drives OpenGL. All methods must run on the thread that owns the
// GL context.
type Device struct {
	config Config

	colorProgram    *program
	texturedProgram *program

	// uploadVAO is bound while index data is written so the element buffer
	// binding of the caller's VAO is left alone.
	uploadVAO uint32

	vb       *VertexBuffer
	ib       *IndexBuffer
	textures [MaxTextureSlots]gpu.Texture
	state    gpu.RenderState

	// applied is the effect pass applied since the last SetVertexBuffer.
	applied *Pass

	projection math.Mat4
	log        *zap.Logger
}

// New creates the device.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Disable(gl.DEPTH_TEST)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)

	var err error
	if d.colorProgram, err = newProgram(shader.VertexColor); err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	if d.texturedProgram, err = newProgram(shader.Textured); err != nil {
		d.colorProgram.delete()
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	gl.GenVertexArrays(1, &d.uploadVAO)

	d.Resize(cfg.Width, cfg.Height)
	d.SetRenderState(gpu.DefaultRenderState)
	return d, nil
}

// Close releases the built-in programs.
func (d *Device) Close() {
	d.log.Info("closing renderer")
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	if d.uploadVAO != 0 {
		gl.DeleteVertexArrays(1, &d.uploadVAO)
		d.uploadVAO = 0
	}
	d.colorProgram.delete()
	d.texturedProgram.delete()
	d.vb, d.ib, d.applied = nil, nil, nil
}

// Resize handles window resize.
func (d *Device) Resize(width, height int) {
	d.config.Width = width
	d.config.Height = height
	d.projection = math.ScreenOrtho(float32(width), float32(height))
	gl.Viewport(0, 0, int32(width), int32(height))
	d.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size implements gpu.Device.
func (d *Device) Size() (int, int) {
	return d.config.Width, d.config.Height
}

// Clear fills the back buffer with c.
func (d *Device) Clear(c gpu.Color) {
	f := c.Floats()
	gl.ClearColor(f[0], f[1], f[2], f[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// ReadPixels reads the back buffer, top row first.
func (d *Device) ReadPixels() *image.NRGBA {
	w, h := d.config.Width, d.config.Height
	pixels := make([]byte, w*h*4)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return flipRows(pixels, w, h)
}

// flipRows copies bottom-up GL rows into an image with the origin at the top.
func flipRows(pixels []byte, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}
	return img
}

// SetVertexBuffer implements gpu.Device.
func (d *Device) SetVertexBuffer(vb gpu.VertexBuffer) error {
	d.applied = nil
	if vb == nil {
		d.vb = nil
		gl.BindVertexArray(0)
		return nil
	}
	buf, ok := vb.(*VertexBuffer)
	if !ok || buf.device != d {
		return fmt.Errorf("renderer: vertex buffer %T belongs to another device", vb)
	}
	if buf.released {
		return gpu.ErrBufferReleased
	}
	d.vb = buf
	gl.BindVertexArray(buf.vao)
	return nil
}

// SetIndexBuffer implements gpu.Device.
func (d *Device) SetIndexBuffer(ib gpu.IndexBuffer) error {
	if ib == nil {
		d.ib = nil
		return nil
	}
	buf, ok := ib.(*IndexBuffer)
	if !ok || buf.device != d {
		return fmt.Errorf("renderer: index buffer %T belongs to another device", ib)
	}
	if buf.released {
		return gpu.ErrBufferReleased
	}
	d.ib = buf
	return nil
}

// SetTexture implements gpu.Device. Out-of-range slots are ignored.
func (d *Device) SetTexture(slot int, tex gpu.Texture) {
	if slot < 0 || slot >= MaxTextureSlots {
		return
	}
	d.textures[slot] = tex
	d.bindTexture(slot)
}

func (d *Device) bindTexture(slot int) {
	var id uint32
	if t, ok := d.textures[slot].(*Texture); ok && !t.released {
		id = t.id
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
	gl.BindTexture(gl.TEXTURE_2D, id)
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

	switch state.Cull {
	case gpu.CullCounterClockwise:
		// Screen space is Y down, so clockwise on screen is
		// counter-clockwise once projected.
		gl.Enable(gl.CULL_FACE)
		gl.FrontFace(gl.CCW)
		gl.CullFace(gl.BACK)
	default:
		gl.Disable(gl.CULL_FACE)
	}

	switch state.Blend {
	case gpu.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.Disable(gl.BLEND)
	}
}

// DrawPrimitives implements gpu.Device.
func (d *Device) DrawPrimitives(topology gpu.Topology, startVertex, primitiveCount int) error {
	if d.vb == nil {
		return gpu.ErrNoVertexBuffer
	}
	mode, err := glMode(topology)
	if err != nil {
		return err
	}
	n := topology.VertexCount(primitiveCount)
	if startVertex < 0 || primitiveCount <= 0 || startVertex+n > d.vb.written {
		return fmt.Errorf("%w: %d %s primitives from vertex %d, %d vertices uploaded",
			gpu.ErrDrawRange, primitiveCount, topology, startVertex, d.vb.written)
	}

	d.useProgram()
	gl.DrawArrays(mode, int32(startVertex), int32(n))
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
	mode, err := glMode(topology)
	if err != nil {
		return err
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

	d.useProgram()
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.ib.ebo)
	gl.DrawElementsBaseVertex(mode, int32(n), gl.UNSIGNED_INT, gl.PtrOffset(startIndex*4), int32(baseVertex))
	return nil
}

// useProgram binds the built-in program for the bound format unless an
// effect pass is in charge.
func (d *Device) useProgram() {
	if d.applied != nil {
		return
	}
	p := d.colorProgram
	if d.vb.format == gpu.FormatPositionColorTexture {
		p = d.texturedProgram
	}
	d.bindProgram(p)
}

func (d *Device) bindProgram(p *program) {
	gl.UseProgram(p.id)
	if p.projection >= 0 {
		gl.UniformMatrix4fv(p.projection, 1, false, d.projection.Ptr())
	}
	if p.sampler >= 0 {
		gl.Uniform1i(p.sampler, 0)
	}
}

func glMode(t gpu.Topology) (uint32, error) {
	switch t {
	case gpu.LineList:
		return gl.LINES, nil
	case gpu.LineStrip:
		return gl.LINE_STRIP, nil
	case gpu.TriangleList:
		return gl.TRIANGLES, nil
	case gpu.TriangleStrip:
		return gl.TRIANGLE_STRIP, nil
	default:
		return 0, fmt.Errorf("renderer: unsupported topology %d", int(t))
	}
}

func glUsage(u gpu.BufferUsage) uint32 {
	if u == gpu.UsageStatic {
		return gl.STATIC_DRAW
	}
	return gl.DYNAMIC_DRAW
}

package raster

import (
	"image"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
)

// FrameBuffer holds the render target as a flat RGBA slice for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8 // RGBA interleaved, non-premultiplied, len = W*H*4
}

// NewFrameBuffer allocates a transparent black color buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, w*h*4),
	}
}

// Clear fills every pixel with c.
func (fb *FrameBuffer) Clear(c gpu.Color) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = c.R
		fb.Color[i+1] = c.G
		fb.Color[i+2] = c.B
		fb.Color[i+3] = c.A
	}
}

// At returns the pixel at (x, y). Out-of-bounds reads return Transparent.
func (fb *FrameBuffer) At(x, y int) gpu.Color {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return gpu.Transparent
	}
	i := (y*fb.Width + x) * 4
	return gpu.Color{R: fb.Color[i], G: fb.Color[i+1], B: fb.Color[i+2], A: fb.Color[i+3]}
}

// Image returns a copy of the buffer as an NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}

// blend writes c at (x, y), alpha blending over the existing pixel when alpha is set.
func (fb *FrameBuffer) blend(x, y int, c gpu.Color, alpha bool) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return
	}
	i := (y*fb.Width + x) * 4
	if !alpha || c.A == 255 {
		fb.Color[i] = c.R
		fb.Color[i+1] = c.G
		fb.Color[i+2] = c.B
		fb.Color[i+3] = c.A
		return
	}
	if c.A == 0 {
		return
	}

	sa := float64(c.A) / 255.0
	da := float64(fb.Color[i+3]) / 255.0
	oa := sa + da*(1-sa)
	mix := func(s, d uint8) uint8 {
		v := (float64(s)*sa + float64(d)*da*(1-sa)) / oa
		return clamp255(v)
	}
	fb.Color[i] = mix(c.R, fb.Color[i])
	fb.Color[i+1] = mix(c.G, fb.Color[i+1])
	fb.Color[i+2] = mix(c.B, fb.Color[i+2])
	fb.Color[i+3] = clamp255(oa * 255)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

package gpu

import (
	"image/color"
	"math"
)

// Color is an 8-bit RGBA color with straight (non-premultiplied) alpha.
type Color struct {
	R, G, B, A uint8
}

// Predefined colors used by the demos and tests.
var (
	Transparent = Color{0, 0, 0, 0}
	White       = Color{255, 255, 255, 255}
	Black       = Color{0, 0, 0, 255}
	Red         = Color{255, 0, 0, 255}
	Green       = Color{0, 255, 0, 255}
	Blue        = Color{0, 0, 255, 255}
	Yellow      = Color{255, 255, 0, 255}
	Orange      = Color{255, 165, 0, 255}
	HotPink     = Color{255, 105, 180, 255}
)

// RGBA creates a color from 8-bit RGBA values (0-255).
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// RGB creates a color from 8-bit RGB values with full alpha.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Lerp blends each channel from c toward to by t. t is clamped to [0,1],
// so t=0 yields c and t=1 yields to exactly.
func (c Color) Lerp(to Color, t float32) Color {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return to
	}
	return Color{
		R: lerpChannel(c.R, to.R, t),
		G: lerpChannel(c.G, to.G, t),
		B: lerpChannel(c.B, to.B, t),
		A: lerpChannel(c.A, to.A, t),
	}
}

func lerpChannel(a, b uint8, t float32) uint8 {
	v := float32(a) + (float32(b)-float32(a))*t
	return uint8(math.Round(float64(v)))
}

// WithAlpha returns a copy of the color with a different alpha value.
func (c Color) WithAlpha(a uint8) Color {
	return Color{c.R, c.G, c.B, a}
}

// Floats returns the channels normalized to 0.0-1.0, as GL vertex attributes expect.
func (c Color) Floats() [4]float32 {
	return [4]float32{
		float32(c.R) / 255.0,
		float32(c.G) / 255.0,
		float32(c.B) / 255.0,
		float32(c.A) / 255.0,
	}
}

// NRGBA converts to the standard library color type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FromColor converts any image color to Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

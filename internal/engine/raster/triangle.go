package raster

import (
	"image"
	"math"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
)

// vertex is a transformed vertex in pixel space (origin top-left, Y down).
type vertex struct {
	x, y  float64
	color gpu.Color
	u, v  float64
}

// signedArea returns twice the signed area of abc. Positive is clockwise on
// screen because Y grows downward.
func signedArea(a, b, c vertex) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

// rasterizeTriangle fills abc sampling at pixel centers. Colors and texture
// coordinates are interpolated barycentrically; a non-nil tex is modulated by
// the interpolated vertex color.
func rasterizeTriangle(fb *FrameBuffer, a, b, c vertex, tex *image.NRGBA, state gpu.RenderState) {
	area := signedArea(a, b, c)
	if area > -1e-9 && area < 1e-9 {
		return
	}
	if state.Cull == gpu.CullCounterClockwise && area < 0 {
		return
	}

	minX := int(math.Floor(math.Min(math.Min(a.x, b.x), c.x)))
	maxX := int(math.Ceil(math.Max(math.Max(a.x, b.x), c.x)))
	minY := int(math.Floor(math.Min(math.Min(a.y, b.y), c.y)))
	maxY := int(math.Ceil(math.Max(math.Max(a.y, b.y), c.y)))

	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, fb.Width-1)
	maxY = min(maxY, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	invArea := 1.0 / area
	alpha := state.Blend == gpu.BlendAlpha

	for sy := minY; sy <= maxY; sy++ {
		py := float64(sy) + 0.5
		for sx := minX; sx <= maxX; sx++ {
			px := float64(sx) + 0.5
			p := vertex{x: px, y: py}

			// Barycentric weights, normalized so winding does not matter
			w0 := signedArea(b, c, p) * invArea
			w1 := signedArea(c, a, p) * invArea
			w2 := 1.0 - w0 - w1
			if w0 < -1e-6 || w1 < -1e-6 || w2 < -1e-6 {
				continue
			}

			col := gpu.Color{
				R: clamp255(w0*float64(a.color.R) + w1*float64(b.color.R) + w2*float64(c.color.R)),
				G: clamp255(w0*float64(a.color.G) + w1*float64(b.color.G) + w2*float64(c.color.G)),
				B: clamp255(w0*float64(a.color.B) + w1*float64(b.color.B) + w2*float64(c.color.B)),
				A: clamp255(w0*float64(a.color.A) + w1*float64(b.color.A) + w2*float64(c.color.A)),
			}

			if tex != nil {
				u := w0*a.u + w1*b.u + w2*c.u
				v := w0*a.v + w1*b.v + w2*c.v
				tr, tg, tb, ta := SampleTexture(tex, u, v)
				col = modulate(col, gpu.Color{R: tr, G: tg, B: tb, A: ta})
			}

			fb.blend(sx, sy, col, alpha)
		}
	}
}

// modulate multiplies two colors channel by channel.
func modulate(a, b gpu.Color) gpu.Color {
	mul := func(x, y uint8) uint8 {
		return uint8((uint16(x)*uint16(y) + 127) / 255)
	}
	return gpu.Color{R: mul(a.R, b.R), G: mul(a.G, b.G), B: mul(a.B, b.B), A: mul(a.A, b.A)}
}

// rasterizeLine draws a one pixel wide segment from a to b with a DDA walk,
// interpolating the color along it.
func rasterizeLine(fb *FrameBuffer, a, b vertex, state gpu.RenderState) {
	dx := b.x - a.x
	dy := b.y - a.y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	alpha := state.Blend == gpu.BlendAlpha

	if steps == 0 {
		fb.blend(int(math.Floor(a.x)), int(math.Floor(a.y)), a.color, alpha)
		return
	}

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := a.x + dx*t
		y := a.y + dy*t
		fb.blend(int(math.Floor(x)), int(math.Floor(y)), a.color.Lerp(b.color, float32(t)), alpha)
	}
}

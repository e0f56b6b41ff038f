package renderer

import (
	"fmt"
	"image"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Texture is a 2D RGBA8 GL texture.
type Texture struct {
	id            uint32
	width, height int
	released      bool
}

// NewTexture implements gpu.Device. The pixels are uploaded as straight alpha.
func (d *Device) NewTexture(img *image.NRGBA) (gpu.Texture, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty texture image", gpu.ErrInvalidSize)
	}
	pix := tightPixels(img)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	t := &Texture{width: w, height: h}
	gl.GenTextures(1, &t.id)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))

	d.bindTexture(0)
	return t, nil
}

// tightPixels returns the image rows without stride padding or offset.
func tightPixels(img *image.NRGBA) []byte {
	b := img.Bounds()
	rowSize := b.Dx() * 4
	if img.Stride == rowSize && b.Min == (image.Point{}) {
		return img.Pix[:rowSize*b.Dy()]
	}
	pix := make([]byte, 0, rowSize*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		pix = append(pix, img.Pix[off:off+rowSize]...)
	}
	return pix
}

// Width implements gpu.Texture.
func (t *Texture) Width() int { return t.width }

// Height implements gpu.Texture.
func (t *Texture) Height() int { return t.height }

// Released implements gpu.Texture.
func (t *Texture) Released() bool { return t.released }

// Release implements gpu.Texture.
func (t *Texture) Release() {
	if t.released {
		return
	}
	t.released = true
	gl.DeleteTextures(1, &t.id)
	t.id = 0
}

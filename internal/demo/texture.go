package demo

import (
	"image"
	"image/color"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/engine/texture"
)

// Checkerboard used when no texture file is configured.
const (
	checkerSize = 64
	checkerCell = 8
)

var (
	checkerLight = color.NRGBA{R: 235, G: 235, B: 235, A: 255}
	checkerDark  = color.NRGBA{R: 255, G: 105, B: 180, A: 255}
)

// LoadImage reads the mesh texture from path, or generates the checkerboard
// when path is empty.
func LoadImage(path string) (*image.NRGBA, error) {
	if path == "" {
		return texture.Checker(checkerSize, checkerCell, checkerLight, checkerDark), nil
	}
	return texture.Load(path)
}

// LoadTexture uploads the mesh texture to dev. See LoadImage.
func LoadTexture(dev gpu.Device, path string) (gpu.Texture, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return dev.NewTexture(img)
}

package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func sample() *image.NRGBA {
	return Checker(8, 2, color.NRGBA{255, 0, 0, 255}, color.NRGBA{0, 0, 255, 255})
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"arrow.png", FormatPNG, false},
		{"dir/ARROW.TGA", FormatTGA, false},
		{"frame.webp", FormatWebP, false},
		{"legacy.bmp", FormatBMP, false},
		{"photo.jpg", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
			}
		})
	}
}

// Every supported format must survive a save and load through its own codec.
func TestSaveLoadFormats(t *testing.T) {
	dir := t.TempDir()
	src := sample()

	for _, name := range []string{"tex.png", "tex.tga", "tex.bmp", "tex.webp"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Save(path, src); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Bounds() != src.Bounds() {
				t.Fatalf("bounds = %v, want %v", got.Bounds(), src.Bounds())
			}
			for _, p := range []image.Point{{0, 0}, {3, 1}, {7, 7}} {
				if got.NRGBAAt(p.X, p.Y) != src.NRGBAAt(p.X, p.Y) {
					t.Errorf("pixel %v = %v, want %v", p, got.NRGBAAt(p.X, p.Y), src.NRGBAAt(p.X, p.Y))
				}
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecodeUnsupported(t *testing.T) {
	if _, err := Decode(bytes.NewReader(nil), Format("gif")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if err := Encode(&bytes.Buffer{}, sample(), Format("gif")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestToNRGBA(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(2, 2, 6, 6))
	rgba.Set(2, 2, color.RGBA{10, 20, 30, 255})

	got := ToNRGBA(rgba)
	if got.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("bounds = %v, want origin-anchored 4x4", got.Bounds())
	}
	if c := got.NRGBAAt(0, 0); c != (color.NRGBA{10, 20, 30, 255}) {
		t.Errorf("pixel = %v", c)
	}

	src := sample()
	if ToNRGBA(src) != src {
		t.Error("origin-anchored NRGBA should be returned as is")
	}
}

func TestDownsample(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 200, 100, 50, 255
	}

	got := Downsample(img, 2)
	if got.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatalf("bounds = %v, want 4x2", got.Bounds())
	}
	c := got.NRGBAAt(1, 1)
	if absDiff(c.R, 200) > 1 || absDiff(c.G, 100) > 1 || absDiff(c.B, 50) > 1 || c.A < 254 {
		t.Errorf("uniform image changed color: %v", c)
	}

	if Downsample(img, 1) != img {
		t.Error("factor 1 should return the input")
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

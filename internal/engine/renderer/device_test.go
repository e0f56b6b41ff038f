package renderer

import (
	"image"
	"testing"
	"unsafe"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
)

func TestGLMode(t *testing.T) {
	tests := []struct {
		topology gpu.Topology
		want     uint32
	}{
		{gpu.LineList, gl.LINES},
		{gpu.LineStrip, gl.LINE_STRIP},
		{gpu.TriangleList, gl.TRIANGLES},
		{gpu.TriangleStrip, gl.TRIANGLE_STRIP},
	}
	for _, tt := range tests {
		t.Run(tt.topology.String(), func(t *testing.T) {
			got, err := glMode(tt.topology)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("glMode(%s) = %#x, want %#x", tt.topology, got, tt.want)
			}
		})
	}

	if _, err := glMode(gpu.Topology(42)); err == nil {
		t.Error("expected error for unknown topology")
	}
}

func TestFlipRows(t *testing.T) {
	// Two rows, bottom row first as GL returns them
	pixels := []byte{
		1, 1, 1, 255, 2, 2, 2, 255,
		3, 3, 3, 255, 4, 4, 4, 255,
	}
	img := flipRows(pixels, 2, 2)

	if got := img.NRGBAAt(0, 0).R; got != 3 {
		t.Errorf("top-left = %d, want 3", got)
	}
	if got := img.NRGBAAt(1, 1).R; got != 2 {
		t.Errorf("bottom-right = %d, want 2", got)
	}
}

func TestTightPixels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}

	if got := tightPixels(img); &got[0] != &img.Pix[0] {
		t.Error("tight image should not be copied")
	}

	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.NRGBA)
	got := tightPixels(sub)
	if len(got) != 2*2*4 {
		t.Fatalf("len = %d, want 16", len(got))
	}
	if want := img.Pix[img.PixOffset(1, 1)]; got[0] != want {
		t.Errorf("first byte = %d, want %d", got[0], want)
	}
	if want := img.Pix[img.PixOffset(1, 2)]; got[8] != want {
		t.Errorf("second row = %d, want %d", got[8], want)
	}
}

func TestVertexLayoutMatchesStride(t *testing.T) {
	tests := []struct {
		format gpu.VertexFormat
		size   int
	}{
		{gpu.FormatPositionColor, sizeOfColored},
		{gpu.FormatPositionColorTexture, sizeOfTextured},
	}
	for _, tt := range tests {
		if tt.format.Stride() != tt.size {
			t.Errorf("%s stride = %d, Go struct size = %d", tt.format, tt.format.Stride(), tt.size)
		}
	}
}

// Go sizes of the vertex structs uploaded by SetData.
var (
	sizeOfColored  = int(unsafe.Sizeof(gpu.VertexPositionColor{}))
	sizeOfTextured = int(unsafe.Sizeof(gpu.VertexPositionColorTexture{}))
)

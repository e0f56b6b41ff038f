package gpu

import "github.com/Faultbox/midgard-gfx/pkg/math"

// VertexFormat identifies the layout stored in a vertex buffer.
type VertexFormat int

const (
	// FormatPositionColor is position (xyz) + RGBA8 color.
	FormatPositionColor VertexFormat = iota
	// FormatPositionColorTexture is position (xyz) + RGBA8 color + texcoord (uv).
	FormatPositionColorTexture
)

// String returns the format name.
func (f VertexFormat) String() string {
	switch f {
	case FormatPositionColor:
		return "PositionColor"
	case FormatPositionColorTexture:
		return "PositionColorTexture"
	default:
		return "Unknown"
	}
}

// Stride returns the size in bytes of one vertex on the GPU.
// Colors are uploaded as four normalized unsigned bytes.
func (f VertexFormat) Stride() int {
	switch f {
	case FormatPositionColor:
		return 3*4 + 4
	case FormatPositionColorTexture:
		return 3*4 + 4 + 2*4
	default:
		return 0
	}
}

// VertexPositionColor is a colored vertex.
type VertexPositionColor struct {
	Position math.Vec3
	Color    Color
}

// VertexPositionColorTexture is a colored, textured vertex.
type VertexPositionColorTexture struct {
	Position math.Vec3
	Color    Color
	TexCoord math.Vec2
}

// Vertices is vertex data ready for upload.
type Vertices interface {
	Format() VertexFormat
	Len() int
}

// ColoredVertices is upload data for FormatPositionColor buffers.
type ColoredVertices []VertexPositionColor

// Format implements Vertices.
func (ColoredVertices) Format() VertexFormat { return FormatPositionColor }

// Len implements Vertices.
func (v ColoredVertices) Len() int { return len(v) }

// TexturedVertices is upload data for FormatPositionColorTexture buffers.
type TexturedVertices []VertexPositionColorTexture

// Format implements Vertices.
func (TexturedVertices) Format() VertexFormat { return FormatPositionColorTexture }

// Len implements Vertices.
func (v TexturedVertices) Len() int { return len(v) }

// ValidTexCoord reports whether uv lies in [0,1]x[0,1].
func ValidTexCoord(uv math.Vec2) bool {
	return uv.X >= 0 && uv.X <= 1 && uv.Y >= 0 && uv.Y <= 1
}

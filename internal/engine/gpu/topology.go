package gpu

// Topology is the primitive assembly mode of a draw call.
type Topology int

const (
	LineList Topology = iota
	LineStrip
	TriangleList
	TriangleStrip
)

// String returns the topology name.
func (t Topology) String() string {
	switch t {
	case LineList:
		return "LineList"
	case LineStrip:
		return "LineStrip"
	case TriangleList:
		return "TriangleList"
	case TriangleStrip:
		return "TriangleStrip"
	default:
		return "Unknown"
	}
}

// PrimitiveCount returns how many primitives n vertices assemble into.
// Counts that do not form a single primitive yield 0.
func (t Topology) PrimitiveCount(n int) int {
	var c int
	switch t {
	case LineList:
		c = n / 2
	case LineStrip:
		c = n - 1
	case TriangleList:
		c = n / 3
	case TriangleStrip:
		c = n - 2
	}
	if c < 0 {
		return 0
	}
	return c
}

// VertexCount returns the number of vertices primitiveCount primitives consume.
func (t Topology) VertexCount(primitiveCount int) int {
	if primitiveCount <= 0 {
		return 0
	}
	switch t {
	case LineList:
		return primitiveCount * 2
	case LineStrip:
		return primitiveCount + 1
	case TriangleList:
		return primitiveCount * 3
	case TriangleStrip:
		return primitiveCount + 2
	default:
		return 0
	}
}

// IsLine reports whether the topology rasterizes lines.
func (t Topology) IsLine() bool {
	return t == LineList || t == LineStrip
}

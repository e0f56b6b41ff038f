package raster

import (
	"fmt"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
)

// Op identifies a recorded device call.
type Op int

const (
	OpCreateVertexBuffer Op = iota
	OpCreateIndexBuffer
	OpReleaseVertexBuffer
	OpReleaseIndexBuffer
	OpUploadVertices
	OpUploadIndices
	OpSetVertexBuffer
	OpSetIndexBuffer
	OpSetTexture
	OpSetRenderState
	OpApplyPass
	OpDraw
	OpDrawIndexed
)

var opNames = [...]string{
	OpCreateVertexBuffer:  "CreateVertexBuffer",
	OpCreateIndexBuffer:   "CreateIndexBuffer",
	OpReleaseVertexBuffer: "ReleaseVertexBuffer",
	OpReleaseIndexBuffer:  "ReleaseIndexBuffer",
	OpUploadVertices:      "UploadVertices",
	OpUploadIndices:       "UploadIndices",
	OpSetVertexBuffer:     "SetVertexBuffer",
	OpSetIndexBuffer:      "SetIndexBuffer",
	OpSetTexture:          "SetTexture",
	OpSetRenderState:      "SetRenderState",
	OpApplyPass:           "ApplyPass",
	OpDraw:                "Draw",
	OpDrawIndexed:         "DrawIndexed",
}

// String returns the operation name.
func (o Op) String() string {
	if o >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Call is one recorded device call. Fields not meaningful for Op are zero.
type Call struct {
	Op       Op
	Topology gpu.Topology
	Format   gpu.VertexFormat

	// Count is the buffer capacity, uploaded element count, or primitive count.
	Count       int
	Start       int // start vertex or start index
	BaseVertex  int
	NumVertices int

	Slot    int
	Texture gpu.Texture
	Effect  string
	Pass    int
	Clear   bool // SetVertexBuffer(nil)
	State   gpu.RenderState

	// Uploaded data, copied at upload time.
	Vertices gpu.Vertices
	Indices  []int32
}

// String formats the call for test failure messages.
func (c Call) String() string {
	switch c.Op {
	case OpDraw:
		return fmt.Sprintf("Draw(%s, start=%d, prims=%d)", c.Topology, c.Start, c.Count)
	case OpDrawIndexed:
		return fmt.Sprintf("DrawIndexed(%s, base=%d, verts=%d, start=%d, prims=%d)",
			c.Topology, c.BaseVertex, c.NumVertices, c.Start, c.Count)
	case OpSetVertexBuffer:
		if c.Clear {
			return "SetVertexBuffer(nil)"
		}
		return "SetVertexBuffer"
	case OpApplyPass:
		return fmt.Sprintf("ApplyPass(%s#%d)", c.Effect, c.Pass)
	case OpCreateVertexBuffer, OpUploadVertices:
		return fmt.Sprintf("%s(%s, %d)", c.Op, c.Format, c.Count)
	case OpCreateIndexBuffer, OpUploadIndices:
		return fmt.Sprintf("%s(%d)", c.Op, c.Count)
	default:
		return c.Op.String()
	}
}

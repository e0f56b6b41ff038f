package primitives

import (
	"fmt"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
)

// Packet accumulates colored vertices for a single non-indexed draw.
//
// Each AddDraw call must supply exactly the vertices one more primitive of the
// packet's topology needs:
//
//	LineList       2 per call
//	LineStrip      2 on the first call, then 1
//	TriangleList   3 per call
//	TriangleStrip  3 on the first call, then 2
//
// A packet is single use. Drawer.SubmitPacket releases it.
type Packet struct {
	topology gpu.Topology
	draws    []gpu.VertexPositionColor
	released bool
}

// NewPacket creates an empty packet for the given topology.
func NewPacket(topology gpu.Topology) *Packet {
	return &Packet{topology: topology}
}

// Topology returns the packet's primitive topology.
func (p *Packet) Topology() gpu.Topology {
	return p.topology
}

// expected returns how many vertices the next AddDraw must supply.
func (p *Packet) expected() int {
	first := len(p.draws) == 0
	switch p.topology {
	case gpu.LineList:
		return 2
	case gpu.LineStrip:
		if first {
			return 2
		}
		return 1
	case gpu.TriangleList:
		return 3
	case gpu.TriangleStrip:
		if first {
			return 3
		}
		return 2
	default:
		return -1
	}
}

// AddDraw appends the vertices of one primitive. Depth is forced to zero.
func (p *Packet) AddDraw(additions ...gpu.VertexPositionColor) error {
	if p.released {
		return ErrPacketReleased
	}
	expected := p.expected()
	if expected < 0 {
		return fmt.Errorf("%w: unsupported topology %s", ErrArity, p.topology)
	}
	if len(additions) != expected {
		return fmt.Errorf("%w: packet (%s) expected %d, received %d",
			ErrArity, p.topology, expected, len(additions))
	}

	for _, v := range additions {
		v.Position.Z = 0
		p.draws = append(p.draws, v)
	}
	return nil
}

// PrimitiveCount returns the number of primitives the packet draws.
func (p *Packet) PrimitiveCount() int {
	return p.topology.PrimitiveCount(len(p.draws))
}

// Len returns the number of vertices in the packet.
func (p *Packet) Len() int {
	return len(p.draws)
}

// Vertices returns a copy of the accumulated vertices.
func (p *Packet) Vertices() []gpu.VertexPositionColor {
	return append([]gpu.VertexPositionColor(nil), p.draws...)
}

// Release drops the vertex storage. Further use fails with ErrPacketReleased.
func (p *Packet) Release() {
	p.released = true
	p.draws = nil
}

// Released reports whether the packet has been submitted or released.
func (p *Packet) Released() bool {
	return p.released
}

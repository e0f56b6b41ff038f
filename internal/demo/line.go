package demo

import (
	"github.com/Faultbox/midgard-gfx/internal/dispatch"
	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/primitives"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

const (
	lineSize     = 16
	lineLifetime = 60 * 20
	trailLength  = 300
)

// line is a small box that changes direction periodically and draws either
// its velocity or the path it has travelled.
type line struct {
	mode     Type
	position math.Vec2 // top-left
	velocity math.Vec2
	timeLeft int

	// oldPos[0] is the most recent previous position
	oldPos []math.Vec2
}

func newLine(pos, vel math.Vec2, mode Type) *line {
	return &line{
		mode:     mode,
		position: pos,
		velocity: vel,
		timeLeft: lineLifetime,
		oldPos:   make([]math.Vec2, 0, trailLength),
	}
}

func (l *line) size() math.Vec2 {
	return math.Vec2{X: lineSize, Y: lineSize}
}

func (l *line) center() math.Vec2 {
	return l.position.Add(l.size().Scale(0.5))
}

func (l *line) swapTime() int {
	if l.mode == LineVelocity {
		return 26
	}
	return 10
}

func (l *line) Update(s *Scene) {
	if l.timeLeft%l.swapTime() == 0 {
		l.velocity = s.randomUnit().Scale(launchSpeed)
	}

	if len(l.oldPos) < trailLength {
		l.oldPos = append(l.oldPos, math.Vec2{})
	}
	copy(l.oldPos[1:], l.oldPos)
	l.oldPos[0] = l.position

	l.position = l.position.Add(l.velocity)
	l.timeLeft--
}

func (l *line) Active() bool { return l.timeLeft > 0 }

func (l *line) Kill() { l.timeLeft = 0 }

func (l *line) Draw(s *Scene) error {
	d := s.Lib.Drawer()

	box := gpu.Green.WithAlpha(204)
	if err := d.DrawFilledRectangle(l.position, l.position.Add(l.size()), box, box, box, box); err != nil {
		return err
	}

	switch l.mode {
	case LineVelocity:
		// Through the call surface, the way an external caller would
		_, err := s.Lib.Call(dispatch.FnLineStripColors,
			[]math.Vec2{l.center(), l.center().Add(l.velocity.Scale(10))},
			[]gpu.Color{gpu.Red, gpu.Yellow},
		)
		return err

	case LineTrail:
		n := l.trailPoints()
		if n < 1 {
			return nil
		}
		half := l.size().Scale(0.5)

		// LineStrip takes two points first, then one per segment
		packet := primitives.NewPacket(gpu.LineStrip)
		if err := packet.AddDraw(
			d.ToPrimitive(l.center(), gpu.White),
			d.ToPrimitive(l.oldPos[0].Add(half), gpu.White),
		); err != nil {
			return err
		}
		for i := 1; i < n; i++ {
			if err := packet.AddDraw(d.ToPrimitive(l.oldPos[i].Add(half), gpu.White)); err != nil {
				return err
			}
		}
		return d.SubmitPacket(packet)

	case LineTrailLerp:
		n := l.trailPoints()
		if n < 1 {
			return nil
		}
		half := l.size().Scale(0.5)
		coords := make([]math.Vec2, 0, n+1)
		coords = append(coords, l.center())
		for i := 0; i < n; i++ {
			coords = append(coords, l.oldPos[i].Add(half))
		}
		return d.DrawLineStripLerp(coords, gpu.Red, gpu.Green)
	}
	return nil
}

// trailPoints is how many previous positions the trail draws.
func (l *line) trailPoints() int {
	return min(lineLifetime-l.timeLeft, len(l.oldPos))
}

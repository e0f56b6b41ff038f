package demo

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/dispatch"
	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/mesh"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

const (
	meshSize     = 32
	meshLifetime = 60 * 20
)

var (
	quadTexCoords = []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	quadIndices   = []int32{0, 1, 2, 2, 1, 3}
)

// scaleMesh is a stationary textured quad whose scale pulses once a second,
// vertically, horizontally, or along an axis rotated by 45 degrees.
type scaleMesh struct {
	mode     Type
	position math.Vec2 // top-left, world
	timeLeft int
	timer    float32
	axis     float32
	origin   float32 // base scale

	mesh *mesh.Mesh
}

func newScaleMesh(pos math.Vec2, mode Type) *scaleMesh {
	return &scaleMesh{
		mode:     mode,
		position: pos,
		timeLeft: meshLifetime,
		origin:   1,
	}
}

func (m *scaleMesh) bounds() (tl, tr, bl, br math.Vec2) {
	tl = m.position
	tr = tl.Add(math.Vec2{X: meshSize})
	bl = tl.Add(math.Vec2{Y: meshSize})
	br = tl.Add(math.Vec2{X: meshSize, Y: meshSize})
	return
}

func (m *scaleMesh) center() math.Vec2 {
	return m.position.Add(math.Vec2{X: meshSize / 2, Y: meshSize / 2})
}

func (m *scaleMesh) bottom() math.Vec2 {
	return m.position.Add(math.Vec2{X: meshSize / 2, Y: meshSize})
}

func (m *scaleMesh) Update(s *Scene) {
	if m.mesh == nil && m.timeLeft > 0 {
		if err := m.spawn(s); err != nil {
			s.log.Warn("scale mesh spawn failed", zap.Error(err))
			m.Kill()
			return
		}
	}
	m.timer++
	m.timeLeft--
}

func (m *scaleMesh) spawn(s *Scene) error {
	tl, tr, bl, br := m.bounds()
	msh, err := mesh.New(mesh.Config{
		Device:   s.Lib.Device(),
		Registry: s.Lib.Registry(),
		Texture:  s.Texture,
	}, mesh.Geometry{
		Positions: []math.Vec2{tl, tr, bl, br},
		TexCoords: quadTexCoords,
		Color:     gpu.White,
		Indices:   quadIndices,
	})
	if err != nil {
		return err
	}

	screen := s.screenPosition()
	err = msh.ApplyTranslation(screen.Scale(-1))
	if err == nil && m.mode == MeshRotateThenScale {
		m.axis = gomath.Pi / 4
		err = msh.ApplyRotation(m.center().Sub(screen), m.axis)
	}
	if err != nil {
		msh.Dispose()
		return err
	}
	m.mesh = msh
	return nil
}

func (m *scaleMesh) Active() bool { return m.timeLeft > 0 }

// Kill disposes the mesh, which also drops it from the registry.
func (m *scaleMesh) Kill() {
	m.timeLeft = 0
	if m.mesh != nil {
		m.mesh.Dispose()
		m.mesh = nil
	}
}

// Scale is the current pulse factor, between 0.5 and 1.5.
func (m *scaleMesh) Scale() float32 {
	deg := 6 * float64(m.timer)
	return m.origin + float32(gomath.Sin(deg*gomath.Pi/180))*0.5
}

func (m *scaleMesh) Draw(s *Scene) error {
	if m.mesh == nil {
		return nil
	}
	msh := m.mesh
	if msh.Shader != s.Shader {
		if _, err := s.Lib.Call(dispatch.FnModifyMesh, int(msh.ID()), dispatch.FieldShader, s.Shader); err != nil {
			return err
		}
	}
	screen := s.screenPosition()

	// Start from the spawn geometry every frame so scaling does not compound
	if err := msh.Reset(); err != nil {
		return err
	}
	if err := msh.ApplyTranslation(m.position.Sub(screen).Sub(msh.Vertices[0].Position.XY())); err != nil {
		return err
	}

	scale := m.Scale()
	var err error
	switch m.mode {
	case MeshScaleVertical:
		err = msh.ApplyScale(math.Vec2{X: 1, Y: scale}, m.bottom().Sub(screen), 0)
	case MeshScaleHorizontal:
		err = msh.ApplyScale(math.Vec2{X: scale, Y: 1}, m.bottom().Sub(screen), 0)
	case MeshRotateThenScale:
		if err = msh.ApplyRotation(m.center().Sub(screen), m.axis); err == nil {
			err = msh.ApplyScale(math.Vec2{X: 1, Y: scale}, m.center().Sub(screen), m.axis)
		}
	}
	if err != nil {
		return err
	}

	// Follow the camera zoom the way primitives do
	if zoom := s.Camera.Zoom(); zoom != 1 {
		center := s.Camera.ScreenSize().Scale(0.5)
		if err := msh.ApplyScale(math.Vec2{X: zoom, Y: zoom}, center, 0); err != nil {
			return err
		}
	}
	return msh.Draw()
}

// Package demo holds the example objects that exercise the drawing layer and
// the spawnobj command that creates them.
package demo

import (
	"errors"
	"fmt"
	gomath "math"
	"math/rand/v2"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/camera"
	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/graphics"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Command is the chat command that spawns examples.
const Command = "spawnobj"

// Usage is the reply to a malformed command line.
const Usage = "Usage: /spawnobj <example type>"

// Spawn offset above the player and launch speed of new objects.
var (
	spawnOffset = math.Vec2{X: 0, Y: 80}
	launchSpeed = float32(7)
)

// Type selects which example spawnobj creates.
type Type uint

const (
	LineVelocity Type = iota
	LineTrail
	LineTrailLerp
	MeshScaleVertical
	MeshScaleHorizontal
	MeshRotateThenScale
)

var spawnNames = [...]string{
	LineVelocity:        "Example Line - Velocity",
	LineTrail:           "Example Line - Old Postions",
	LineTrailLerp:       "Example Line - Old Postions, Lerped Color",
	MeshScaleVertical:   "Example Mesh - Scale Vertically",
	MeshScaleHorizontal: "Example Mesh - Scale Horizontally",
	MeshRotateThenScale: "Example Mesh - Scale with Initial Rotation",
}

func (t Type) String() string {
	if int(t) < len(spawnNames) {
		return spawnNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint(t))
}

// Types returns the spawn types an example name covers: "ExampleLine",
// "ExampleScaleMesh" or "all".
func Types(example string) ([]Type, error) {
	switch strings.ToLower(example) {
	case "exampleline":
		return []Type{LineVelocity, LineTrail, LineTrailLerp}, nil
	case "examplescalemesh":
		return []Type{MeshScaleVertical, MeshScaleHorizontal, MeshRotateThenScale}, nil
	case "all":
		return []Type{LineVelocity, LineTrail, LineTrailLerp, MeshScaleVertical, MeshScaleHorizontal, MeshRotateThenScale}, nil
	}
	return nil, fmt.Errorf("unknown example %q", example)
}

// Reply is the feedback a command produces.
type Reply struct {
	Text  string
	Error bool
}

// Object is a spawned example.
type Object interface {
	Update(s *Scene)
	Draw(s *Scene) error
	Active() bool
	Kill()
}

// Scene owns the spawned objects and the state they read: the camera, the
// player position and the texture mesh examples draw with.
type Scene struct {
	Lib     *graphics.Library
	Camera  *camera.Camera2D
	Texture gpu.Texture
	Player  math.Vec2

	// Shader is applied to mesh examples through Modify Mesh; nil draws
	// with the built-in program.
	Shader gpu.Effect

	rng     *rand.Rand
	objects []Object
	log     *zap.Logger
}

// NewScene creates an empty scene with the player at the center of the camera.
func NewScene(lib *graphics.Library, cam *camera.Camera2D, tex gpu.Texture, seed uint64) *Scene {
	return &Scene{
		Lib:     lib,
		Camera:  cam,
		Texture: tex,
		Player:  cam.Position.Add(cam.ScreenSize().Scale(0.5)),
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		log:     logger.Named("demo"),
	}
}

// Objects returns the live objects.
func (s *Scene) Objects() []Object {
	return s.objects
}

// Exec runs a chat command line such as "/spawnobj 3".
func (s *Scene) Exec(line string) Reply {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(fields) == 0 || fields[0] != Command {
		return Reply{Text: Usage, Error: true}
	}
	return s.SpawnCommand(fields[1:])
}

// SpawnCommand handles the arguments of spawnobj.
func (s *Scene) SpawnCommand(args []string) Reply {
	if len(args) < 1 {
		return Reply{Text: "Expected a positive integer argument.", Error: true}
	}
	if len(args) > 1 {
		return Reply{Text: "Too many arguments specified.", Error: true}
	}
	n, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return Reply{Text: "Invalid argument", Error: true}
	}

	if err := s.Spawn(Type(n)); err != nil {
		if errors.Is(err, errUnknownType) {
			return Reply{Text: "Unknown example type requested", Error: true}
		}
		return Reply{Text: err.Error(), Error: true}
	}
	return Reply{Text: "Spawned: " + Type(n).String()}
}

var errUnknownType = errors.New("demo: unknown example type")

// Spawn creates an example above the player moving in a random direction.
func (s *Scene) Spawn(t Type) error {
	pos := s.Player.Sub(spawnOffset)
	vel := s.randomUnit().Scale(launchSpeed)

	var obj Object
	switch t {
	case LineVelocity, LineTrail, LineTrailLerp:
		obj = newLine(pos, vel, t)
	case MeshScaleVertical, MeshScaleHorizontal, MeshRotateThenScale:
		obj = newScaleMesh(pos, t)
	default:
		return fmt.Errorf("%w: %d", errUnknownType, uint(t))
	}

	s.objects = append(s.objects, obj)
	s.log.Debug("spawned", zap.Stringer("type", t), zap.Int("objects", len(s.objects)))
	return nil
}

func (s *Scene) randomUnit() math.Vec2 {
	return math.Vec2{X: 1}.Rotate(float32(s.rng.Float64() * 2 * gomath.Pi))
}

// Update advances every object one tick and drops the ones that expired.
func (s *Scene) Update() {
	live := s.objects[:0]
	for _, o := range s.objects {
		o.Update(s)
		if o.Active() {
			live = append(live, o)
		} else {
			o.Kill()
		}
	}
	clear(s.objects[len(live):])
	s.objects = live
}

// Draw draws every object. A failing object is logged and removed so one bad
// example does not stop the frame.
func (s *Scene) Draw() error {
	var errs []error
	live := s.objects[:0]
	for _, o := range s.objects {
		if err := o.Draw(s); err != nil {
			errs = append(errs, err)
			o.Kill()
			continue
		}
		live = append(live, o)
	}
	clear(s.objects[len(live):])
	s.objects = live

	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.log.Warn("demo objects failed to draw", zap.Error(err))
		return err
	}
	return nil
}

// Clear kills every object.
func (s *Scene) Clear() {
	for _, o := range s.objects {
		o.Kill()
	}
	s.objects = nil
}

// screenPosition is the world position of the top-left pixel.
func (s *Scene) screenPosition() math.Vec2 {
	return s.Camera.ScreenPosition()
}

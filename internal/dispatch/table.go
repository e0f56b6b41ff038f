package dispatch

import (
	"fmt"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/mesh"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Function names accepted by Call.
const (
	FnLineStrip          = "Draw Connected Lines, Single Color"
	FnLineStripLerp      = "Draw Connected Lines, Lerp Color"
	FnLineStripColors    = "Draw Connected Lines, Lerp Color per Point"
	FnLineList           = "Draw Lines, Single Color"
	FnLineListColors     = "Draw Lines, Lerp Color per Point"
	FnHollowRectangle    = "Draw Hollow Rectangle"
	FnFilledRectangle    = "Draw Filled Rectangle"
	FnHollowCircle       = "Draw Hollow Circle"
	FnFilledCircle       = "Draw Filled Circle, Single Color"
	FnFilledCircleLerp   = "Draw Filled Circle, Lerp Color"
	FnTriangleList       = "Draw Triangles, Single Color"
	FnTriangleListColors = "Draw Triangles, Lerp Color per Point"
	FnMesh               = "Draw Mesh, Single Color"
	FnMeshColors         = "Draw Mesh, Lerp Color per Vertex"
	FnMeshIndirect       = "Draw Mesh Indirect"
	FnModifyMesh         = "Modify Mesh"
	FnReleaseMesh        = "Release Mesh"
)

// Mesh fields accepted by Modify Mesh.
const (
	FieldPosition = "position"
	FieldTexCoord = "texCoord"
	FieldColor    = "color"
	FieldShader   = "shader"
	FieldTexture  = "texture"
)

type function struct {
	name   string
	params []Param
	call   func(d *Dispatcher, a args) (any, error)
}

var (
	paramPoints = Param{Name: "points", Kind: KindVec2Array}
	paramColors = Param{Name: "colors", Kind: KindColorArray}
	paramColor  = Param{Name: "color", Kind: KindColor}
	paramCenter = Param{Name: "center", Kind: KindVec2}
	paramRadius = Param{Name: "radius", Kind: KindFloat}
	paramID     = Param{Name: "id", Kind: KindInt}
	paramRect   = []Param{
		{Name: "coordTL", Kind: KindVec2},
		{Name: "coordBR", Kind: KindVec2},
		{Name: "colorTL", Kind: KindColor},
		{Name: "colorTR", Kind: KindColor},
		{Name: "colorBL", Kind: KindColor},
		{Name: "colorBR", Kind: KindColor},
	}
)

func meshParams(coloring Param) []Param {
	return []Param{
		{Name: "texture", Kind: KindTexture},
		{Name: "positions", Kind: KindVec2Array},
		{Name: "textureCoordinates", Kind: KindVec2Array},
		coloring,
		{Name: "shader", Kind: KindEffect, Nullable: true},
	}
}

// order is the listing order for Functions.
var order = []string{
	FnLineStrip, FnLineStripLerp, FnLineStripColors,
	FnLineList, FnLineListColors,
	FnHollowRectangle, FnFilledRectangle,
	FnHollowCircle, FnFilledCircle, FnFilledCircleLerp,
	FnTriangleList, FnTriangleListColors,
	FnMesh, FnMeshColors, FnMeshIndirect, FnModifyMesh, FnReleaseMesh,
}

var functions = map[string]*function{
	FnLineStrip: {
		params: []Param{paramPoints, paramColor},
		call: func(d *Dispatcher, a args) (any, error) {
			return true, d.drawer.DrawLineStrip(a.vec2s(0), a.color(1))
		},
	},
	FnLineStripLerp: {
		params: []Param{paramPoints, {Name: "start", Kind: KindColor}, {Name: "end", Kind: KindColor}},
		call: func(d *Dispatcher, a args) (any, error) {
			return true, d.drawer.DrawLineStripLerp(a.vec2s(0), a.color(1), a.color(2))
		},
	},
	FnLineStripColors: {
		params: []Param{paramPoints, paramColors},
		call: func(d *Dispatcher, a args) (any, error) {
			return true, d.drawer.DrawLineStripColors(a.vec2s(0), a.colors(1))
		},
	},
	FnLineList: {
		params: []Param{paramPoints, paramColor},
		call: func(d *Dispatcher, a args) (any, error) {
			return true, d.drawer.DrawLineList(a.vec2s(0), a.color(1))
		},
	},
	FnLineListColors: {
		params: []Param{paramPoints, paramColors},
		call: func(d *Dispatcher, a args) (any, error) {
			return true, d.drawer.DrawLineListColors(a.vec2s(0), a.colors(1))
		},
	},
	FnHollowRectangle: {
		params: paramRect,
		call: func(d *Dispatcher, a args) (any, error) {
			return true, d.drawer.DrawHollowRectangle(a.vec2(0), a.vec2(1), a.color(2), a.color(3), a.color(4), a.color(5))
		},
	},
	FnFilledRectangle: {
		params: paramRect,
		call: func(d *Dispatcher, a args) (any, error) {
			return true, d.drawer.DrawFilledRectangle(a.vec2(0), a.vec2(1), a.color(2), a.color(3), a.color(4), a.color(5))
		},
	},
	FnHollowCircle: {
		params: []Param{paramCenter, paramRadius, paramColor},
		call: func(d *Dispatcher, a args) (any, error) {
			return true, d.drawer.DrawHollowCircle(a.vec2(0), a.float(1), a.color(2))
		},
	},
	FnFilledCircle: {
		params: []Param{paramCenter, paramRadius, paramColor},
		call: func(d *Dispatcher, a args) (any, error) {
			return true, d.drawer.DrawFilledCircle(a.vec2(0), a.float(1), a.color(2))
		},
	},
	FnFilledCircleLerp: {
		params: []Param{paramCenter, paramRadius, paramColor, {Name: "edge", Kind: KindColor}},
		call: func(d *Dispatcher, a args) (any, error) {
			return true, d.drawer.DrawFilledCircleGradient(a.vec2(0), a.float(1), a.color(2), a.color(3))
		},
	},
	FnTriangleList: {
		params: []Param{paramPoints, paramColor},
		call: func(d *Dispatcher, a args) (any, error) {
			return true, d.drawer.DrawTriangleList(a.vec2s(0), a.color(1))
		},
	},
	FnTriangleListColors: {
		params: []Param{paramPoints, paramColors},
		call: func(d *Dispatcher, a args) (any, error) {
			return true, d.drawer.DrawTriangleListColors(a.vec2s(0), a.colors(1))
		},
	},
	FnMesh: {
		params: meshParams(paramColor),
		call: func(d *Dispatcher, a args) (any, error) {
			return d.drawMesh(a, mesh.Geometry{Positions: a.vec2s(1), TexCoords: a.vec2s(2), Color: a.color(3)})
		},
	},
	FnMeshColors: {
		params: meshParams(paramColors),
		call: func(d *Dispatcher, a args) (any, error) {
			colors := a.colors(3)
			if colors == nil {
				return nil, fmt.Errorf("%w: colors", mesh.ErrNilArray)
			}
			return d.drawMesh(a, mesh.Geometry{Positions: a.vec2s(1), TexCoords: a.vec2s(2), Colors: colors})
		},
	},
	FnMeshIndirect: {
		params: []Param{paramID},
		call: func(d *Dispatcher, a args) (any, error) {
			m, err := d.registry.Lookup(mesh.ID(a.int(0)))
			if err != nil {
				return nil, err
			}
			return true, m.Draw()
		},
	},
	FnModifyMesh: {
		params: []Param{
			paramID,
			{Name: "field", Kind: KindString},
			{Name: "value", Kind: KindAny},
			{Name: "slot", Kind: KindInt, Optional: true},
		},
		call: (*Dispatcher).modifyMesh,
	},
	FnReleaseMesh: {
		params: []Param{paramID},
		call: func(d *Dispatcher, a args) (any, error) {
			if !d.registry.Release(mesh.ID(a.int(0))) {
				return nil, fmt.Errorf("%w: %d", mesh.ErrNotFound, a.int(0))
			}
			return true, nil
		},
	},
}

func init() {
	for name, fn := range functions {
		fn.name = name
	}
}

// drawMesh creates a mesh, registers it and draws it once. A mesh that fails
// its first draw is released again.
func (d *Dispatcher) drawMesh(a args, geom mesh.Geometry) (any, error) {
	m, err := mesh.New(mesh.Config{
		Device:   d.device,
		Registry: d.registry,
		Texture:  a.texture(0),
		Shader:   a.effect(4),
	}, geom)
	if err != nil {
		return nil, err
	}
	if err := m.Draw(); err != nil {
		d.registry.Release(m.ID())
		return nil, err
	}
	return int(m.ID()), nil
}

func isArrayField(field string) bool {
	return field == FieldPosition || field == FieldTexCoord || field == FieldColor
}

func (d *Dispatcher) modifyMesh(a args) (any, error) {
	id, field := a.int(0), a.string(1)

	switch {
	case field == FieldShader || field == FieldTexture:
		if a.has(3) {
			return nil, fmt.Errorf("%w: expected 3 arguments for Call(%q, int id, string field, any value), got 4",
				ErrArgCount, FnModifyMesh)
		}
	case isArrayField(field):
		if !a.has(3) {
			return nil, fmt.Errorf("%w: expected 4 arguments for Call(%q, int id, string arrayField, any value, int slot), got 3",
				ErrArgCount, FnModifyMesh)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	m, err := d.registry.Lookup(mesh.ID(id))
	if err != nil {
		return nil, err
	}

	kind, nullable := fieldKinds[field], field == FieldShader
	value, ok := convert(kind, a[2], nullable)
	if !ok {
		return nil, fmt.Errorf("%w: value for Call(%q, int id, %q, %s %s) must be of type %s, got %T",
			ErrArgType, FnModifyMesh, field, kind, field, kind, a[2])
	}

	switch field {
	case FieldPosition:
		err = m.SetPosition(a.int(3), value.(math.Vec2))
	case FieldTexCoord:
		err = m.SetTexCoord(a.int(3), value.(math.Vec2))
	case FieldColor:
		err = m.SetColor(a.int(3), value.(gpu.Color))
	case FieldShader:
		shader, _ := value.(gpu.Effect)
		err = m.SetShader(shader)
	case FieldTexture:
		err = m.SetTexture(value.(gpu.Texture))
	}
	if err != nil {
		return nil, err
	}
	return true, nil
}

var fieldKinds = map[string]Kind{
	FieldPosition: KindVec2,
	FieldTexCoord: KindVec2,
	FieldColor:    KindColor,
	FieldShader:   KindEffect,
	FieldTexture:  KindTexture,
}

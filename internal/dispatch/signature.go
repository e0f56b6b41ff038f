package dispatch

import (
	"fmt"
	"strings"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/mesh"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Kind is the type of a dispatcher parameter.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
	KindVec2
	KindVec2Array
	KindColor
	KindColorArray
	KindTexture
	KindEffect
	KindAny
)

var kindNames = [...]string{
	KindInt:        "int",
	KindFloat:      "float32",
	KindString:     "string",
	KindVec2:       "math.Vec2",
	KindVec2Array:  "[]math.Vec2",
	KindColor:      "gpu.Color",
	KindColorArray: "[]gpu.Color",
	KindTexture:    "gpu.Texture",
	KindEffect:     "gpu.Effect",
	KindAny:        "any",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Param describes one positional argument.
type Param struct {
	Name string
	Kind Kind

	// Nullable accepts an untyped nil.
	Nullable bool
	// Optional parameters may be omitted from the end of the argument list.
	Optional bool
}

func (p Param) String() string {
	return p.Kind.String() + " " + p.Name
}

// Signature renders params the way error messages quote them.
func Signature(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// convert checks v against kind and normalizes it: floats become float32,
// integers become int, nil arrays become typed nil slices.
func convert(kind Kind, v any, nullable bool) (any, bool) {
	if v == nil {
		switch kind {
		case KindVec2Array:
			return []math.Vec2(nil), true
		case KindColorArray:
			return []gpu.Color(nil), true
		case KindAny:
			return nil, true
		}
		return nil, nullable
	}

	switch kind {
	case KindInt:
		switch x := v.(type) {
		case int:
			return x, true
		case mesh.ID:
			return int(x), true
		}
	case KindFloat:
		switch x := v.(type) {
		case float32:
			return x, true
		case float64:
			return float32(x), true
		}
	case KindString:
		if s, ok := v.(string); ok {
			return s, true
		}
	case KindVec2:
		if p, ok := v.(math.Vec2); ok {
			return p, true
		}
	case KindVec2Array:
		if p, ok := v.([]math.Vec2); ok {
			return p, true
		}
	case KindColor:
		if c, ok := v.(gpu.Color); ok {
			return c, true
		}
	case KindColorArray:
		if c, ok := v.([]gpu.Color); ok {
			return c, true
		}
	case KindTexture:
		if t, ok := v.(gpu.Texture); ok {
			return t, true
		}
	case KindEffect:
		if e, ok := v.(gpu.Effect); ok {
			return e, true
		}
	case KindAny:
		return v, true
	}
	return nil, false
}

// args holds converted arguments, indexed like the function's params.
type args []any

func (a args) int(i int) int             { return a[i].(int) }
func (a args) float(i int) float32       { return a[i].(float32) }
func (a args) string(i int) string       { return a[i].(string) }
func (a args) vec2(i int) math.Vec2      { return a[i].(math.Vec2) }
func (a args) vec2s(i int) []math.Vec2   { return a[i].([]math.Vec2) }
func (a args) color(i int) gpu.Color     { return a[i].(gpu.Color) }
func (a args) colors(i int) []gpu.Color  { return a[i].([]gpu.Color) }
func (a args) texture(i int) gpu.Texture { return a[i].(gpu.Texture) }
func (a args) has(i int) bool            { return i < len(a) }

func (a args) effect(i int) gpu.Effect {
	if a[i] == nil {
		return nil
	}
	return a[i].(gpu.Effect)
}

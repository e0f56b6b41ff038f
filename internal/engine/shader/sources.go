package shader

import _ "embed"

// VertexColorVertexShader passes NDC positions and vertex colors through.
//
//go:embed vertex_color.vert
var VertexColorVertexShader string

// VertexColorFragmentShader outputs the interpolated vertex color.
//
//go:embed vertex_color.frag
var VertexColorFragmentShader string

// TexturedVertexShader projects screen-pixel positions with uProjection.
//
//go:embed textured.vert
var TexturedVertexShader string

// TexturedFragmentShader modulates the sampled texel by the vertex color.
//
//go:embed textured.frag
var TexturedFragmentShader string

// GrayscaleFragmentShader is TexturedFragmentShader reduced to luminance.
//
//go:embed grayscale.frag
var GrayscaleFragmentShader string

// Source is a vertex/fragment pair ready for CompileProgram.
type Source struct {
	Name     string
	Vertex   string
	Fragment string
}

// Built-in programs.
var (
	VertexColor = Source{Name: "VertexColor", Vertex: VertexColorVertexShader, Fragment: VertexColorFragmentShader}
	Textured    = Source{Name: "Textured", Vertex: TexturedVertexShader, Fragment: TexturedFragmentShader}
	Grayscale   = Source{Name: "Grayscale", Vertex: TexturedVertexShader, Fragment: GrayscaleFragmentShader}
)

// Uniform names shared by the built-in programs.
const (
	UniformProjection = "uProjection"
	UniformTexture    = "uTexture"
)

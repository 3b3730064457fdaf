// Package shaders provides the embedded GLSL sources of the scene renderer.
package shaders

import _ "embed"

// SurfaceVertexShader transforms surface triangles by the model matrix.
//
//go:embed surface.vert
var SurfaceVertexShader string

// SurfaceFragmentShader shades colored and textured surfaces.
//
//go:embed surface.frag
var SurfaceFragmentShader string

// LineVertexShader transforms colored line lists.
//
//go:embed line.vert
var LineVertexShader string

// LineFragmentShader writes the vertex color.
//
//go:embed line.frag
var LineFragmentShader string

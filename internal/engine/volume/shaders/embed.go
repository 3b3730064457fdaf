// Package shaders provides the embedded GLSL sources of the volume pipeline.
package shaders

import _ "embed"

// RayDataVertexShader transforms grid corners and forwards grid coordinates.
//
//go:embed raydata.vert
var RayDataVertexShader string

// RayDataFragmentShader writes grid coordinate and view distance.
//
//go:embed raydata.frag
var RayDataFragmentShader string

// QuadVertexShader draws a full-screen quad.
//
//go:embed quad.vert
var QuadVertexShader string

// RayCastFragmentShader marches rays between the front and back ray data.
//
//go:embed raycast.frag
var RayCastFragmentShader string

// EdgesFragmentShader extracts the grid silhouette from the front ray data.
//
//go:embed edges.frag
var EdgesFragmentShader string

// CompositeFragmentShader upsamples the ray cast image and overlays edges.
//
//go:embed composite.frag
var CompositeFragmentShader string

// Package surface provides the renderable boundaries the volume is coupled to.
//
// A Surface is a flat triangle list in model space plus an accumulated model
// matrix. Two variants exist: ColoredMesh carries per-vertex colors and
// TexturedMesh carries texture coordinates and a texture. Both keep a derived
// edge list used by the contour overlay.
package surface

import (
	"errors"
	"fmt"

	"github.com/Faultbox/voldiff/pkg/math"
)

// ErrInvalidMesh is returned when vertex data does not form whole triangles.
var ErrInvalidMesh = errors.New("invalid surface mesh")

// Kind is the surface variant.
type Kind int

const (
	ColoredMesh Kind = iota
	TexturedMesh
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case ColoredMesh:
		return "colored"
	case TexturedMesh:
		return "textured"
	default:
		return "unknown"
	}
}

// Interleaved layouts, in floats.
const (
	// ColoredStride is position(3) normal(3) color(4).
	ColoredStride = 10
	// TexturedStride is position(3) normal(3) uv(2).
	TexturedStride = 8
	// EdgeStride is position(3) color(4).
	EdgeStride = 7
)

// Vertex is one triangle corner. Color is used by ColoredMesh, UV by
// TexturedMesh.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	Color    [4]float32
	UV       [2]float32
}

// Texture is an RGBA float image for the textured variant.
type Texture struct {
	Width  int32
	Height int32
	Pixels []float32
}

// Surface is a triangle mesh with an accumulated model transform.
type Surface struct {
	name    string
	kind    Kind
	verts   []Vertex
	edges   []Vertex
	texture *Texture

	model       math.Mat4
	translation math.Vec3
	local       math.AABB

	drawEdges bool
	version   uint64
}

// NewColored creates a per-vertex colored surface from a triangle list.
func NewColored(name string, triangles []Vertex) (*Surface, error) {
	return newSurface(name, ColoredMesh, triangles, nil)
}

// NewTextured creates a textured surface from a triangle list.
func NewTextured(name string, triangles []Vertex, tex *Texture) (*Surface, error) {
	if tex == nil || tex.Width <= 0 || tex.Height <= 0 {
		return nil, fmt.Errorf("%w: %s: missing texture", ErrInvalidMesh, name)
	}
	if len(tex.Pixels) != int(tex.Width*tex.Height*4) {
		return nil, fmt.Errorf("%w: %s: texture has %d floats, want %d",
			ErrInvalidMesh, name, len(tex.Pixels), tex.Width*tex.Height*4)
	}
	return newSurface(name, TexturedMesh, triangles, tex)
}

func newSurface(name string, kind Kind, triangles []Vertex, tex *Texture) (*Surface, error) {
	if len(triangles) == 0 || len(triangles)%3 != 0 {
		return nil, fmt.Errorf("%w: %s: %d vertices", ErrInvalidMesh, name, len(triangles))
	}

	s := &Surface{
		name:      name,
		kind:      kind,
		verts:     append([]Vertex(nil), triangles...),
		texture:   tex,
		model:     math.Identity(),
		local:     math.EmptyAABB(),
		drawEdges: true,
	}
	for _, v := range s.verts {
		s.local = s.local.Extend(v.Position)
	}
	s.buildEdges()
	return s, nil
}

// buildEdges derives three line segments per triangle.
func (s *Surface) buildEdges() {
	s.edges = make([]Vertex, 0, len(s.verts)*2)
	for i := 0; i+2 < len(s.verts); i += 3 {
		a, b, c := s.verts[i], s.verts[i+1], s.verts[i+2]
		s.edges = append(s.edges, a, b, b, c, c, a)
	}
}

// Name returns the surface name.
func (s *Surface) Name() string { return s.name }

// Kind returns the surface variant.
func (s *Surface) Kind() Kind { return s.kind }

// Texture returns the texture of a TexturedMesh, nil otherwise.
func (s *Surface) Texture() *Texture { return s.texture }

// Vertices returns the model-space triangle list.
func (s *Surface) Vertices() []Vertex { return s.verts }

// EdgeVertices returns the line list, two vertices per segment.
func (s *Surface) EdgeVertices() []Vertex { return s.edges }

// TriangleCount returns the number of triangles.
func (s *Surface) TriangleCount() int { return len(s.verts) / 3 }

// Model returns the accumulated model matrix.
func (s *Surface) Model() math.Mat4 { return s.model }

// Translation returns the accumulated translation.
func (s *Surface) Translation() math.Vec3 { return s.translation }

// LocalBounds returns the model-space bounds computed at construction.
func (s *Surface) LocalBounds() math.AABB { return s.local }

// WorldBounds returns the box enclosing the local bounds under the model matrix.
func (s *Surface) WorldBounds() math.AABB {
	return s.local.Transform(s.model)
}

// DrawEdges reports whether the edge overlay is drawn.
func (s *Surface) DrawEdges() bool { return s.drawEdges }

// SetDrawEdges toggles the edge overlay.
func (s *Surface) SetDrawEdges(on bool) { s.drawEdges = on }

// Version changes whenever vertex data changes. Renderers compare it to
// decide when to re-upload.
func (s *Surface) Version() uint64 { return s.version }

// Translate moves the surface by (dx, dy, dz) in world space.
func (s *Surface) Translate(dx, dy, dz float32) {
	s.translation = s.translation.Add(math.V3(dx, dy, dz))
	s.model = math.Translate(dx, dy, dz).Mul(s.model)
}

// RotateX rotates around the X axis through the surface's translation.
func (s *Surface) RotateX(angle float32) { s.pivot(math.RotateX(angle)) }

// RotateY rotates around the Y axis through the surface's translation.
func (s *Surface) RotateY(angle float32) { s.pivot(math.RotateY(angle)) }

// RotateZ rotates around the Z axis through the surface's translation.
func (s *Surface) RotateZ(angle float32) { s.pivot(math.RotateZ(angle)) }

// Rotate rotates around an arbitrary axis through the surface's translation.
func (s *Surface) Rotate(axis math.Vec3, angle float32) {
	s.pivot(math.RotateAxis(axis, angle))
}

// Scale scales uniformly around the surface's translation.
func (s *Surface) Scale(factor float32) {
	s.pivot(math.Scale(factor, factor, factor))
}

// pivot applies m around the current translation: T(t) * m * T(-t) * Model.
func (s *Surface) pivot(m math.Mat4) {
	t := s.translation
	to := math.Translate(t.X, t.Y, t.Z)
	back := math.Translate(-t.X, -t.Y, -t.Z)
	s.model = to.Mul(m).Mul(back).Mul(s.model)
}

// SetColor recolors every vertex, including the edge list.
func (s *Surface) SetColor(r, g, b, a float32) {
	c := [4]float32{r, g, b, a}
	for i := range s.verts {
		s.verts[i].Color = c
	}
	s.buildEdges()
	s.version++
}

// TriangleData returns interleaved triangle vertices in the variant's layout.
func (s *Surface) TriangleData() []float32 {
	stride := ColoredStride
	if s.kind == TexturedMesh {
		stride = TexturedStride
	}

	out := make([]float32, 0, len(s.verts)*stride)
	for _, v := range s.verts {
		out = append(out,
			v.Position.X, v.Position.Y, v.Position.Z,
			v.Normal.X, v.Normal.Y, v.Normal.Z,
		)
		if s.kind == TexturedMesh {
			out = append(out, v.UV[0], v.UV[1])
		} else {
			out = append(out, v.Color[0], v.Color[1], v.Color[2], v.Color[3])
		}
	}
	return out
}

// EdgeData returns interleaved edge vertices (position, color). Textured
// surfaces have no vertex colors, so their edges use edgeColor.
func (s *Surface) EdgeData(edgeColor [4]float32) []float32 {
	out := make([]float32, 0, len(s.edges)*EdgeStride)
	for _, v := range s.edges {
		c := v.Color
		if s.kind == TexturedMesh {
			c = edgeColor
		}
		out = append(out, v.Position.X, v.Position.Y, v.Position.Z, c[0], c[1], c[2], c[3])
	}
	return out
}

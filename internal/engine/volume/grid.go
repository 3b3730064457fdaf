// Package volume renders a density volume by ray casting through the
// bounding grid of a surface.
//
// A frame runs five passes in order: the grid's front faces and back faces
// are rasterized into ray data targets at a reduced resolution, a full-screen
// pass marches each ray through the density texture, an optional edge pass
// extracts the grid silhouette and a composite pass blends the result into
// the back buffer.
package volume

import "github.com/Faultbox/voldiff/pkg/math"

// GridStride is the number of floats per grid vertex: world position
// followed by grid coordinate.
const GridStride = 6

// gridIndices are the 12 outward-facing counter-clockwise triangles of a
// box whose corners follow math.AABB.Corners ordering.
var gridIndices = [36]uint32{
	0, 4, 6, 0, 6, 2, // -X
	1, 3, 7, 1, 7, 5, // +X
	0, 1, 5, 0, 5, 4, // -Y
	2, 6, 7, 2, 7, 3, // +Y
	0, 2, 3, 0, 3, 1, // -Z
	4, 5, 7, 4, 7, 6, // +Z
}

// Grid is the box geometry spanning the volume in world space. Each vertex
// carries its grid coordinate in [0,1]^3.
type Grid struct {
	Min    math.Vec3
	Max    math.Vec3
	Dims   math.Vec3
	MaxDim float32

	vertices [8 * GridStride]float32
}

// BuildGrid builds the grid spanning vMin..vMax. The corners are ordered per
// axis, so swapped bounds produce the same grid. Zero extents are allowed.
func BuildGrid(vMin, vMax math.Vec3) Grid {
	box := math.NewAABB(vMin, vMax)
	g := Grid{
		Min:  box.Min,
		Max:  box.Max,
		Dims: box.Size(),
	}
	g.MaxDim = g.Dims.MaxComponent()

	for i, c := range box.Corners() {
		v := g.vertices[i*GridStride:]
		v[0], v[1], v[2] = c.X, c.Y, c.Z
		v[3] = float32(i & 1)
		v[4] = float32((i >> 1) & 1)
		v[5] = float32((i >> 2) & 1)
	}
	return g
}

// Vertices returns a copy of the interleaved vertex data.
func (g Grid) Vertices() []float32 {
	out := make([]float32, len(g.vertices))
	copy(out, g.vertices[:])
	return out
}

// Indices returns a copy of the triangle indices.
func (g Grid) Indices() []uint32 {
	out := make([]uint32, len(gridIndices))
	copy(out, gridIndices[:])
	return out
}

// Bounds returns the grid as a box.
func (g Grid) Bounds() math.AABB {
	return math.AABB{Min: g.Min, Max: g.Max}
}

// Same reports whether g spans the same box as other.
func (g Grid) Same(other Grid) bool {
	return g.Min == other.Min && g.Max == other.Max
}

// GridCoord maps a world position to grid coordinates. Zero-extent axes map
// to 0. Points outside the grid map outside [0,1].
func (g Grid) GridCoord(p math.Vec3) math.Vec3 {
	rel := p.Sub(g.Min)
	return math.Vec3{
		X: safeDiv(rel.X, g.Dims.X),
		Y: safeDiv(rel.Y, g.Dims.Y),
		Z: safeDiv(rel.Z, g.Dims.Z),
	}
}

// WorldPoint maps grid coordinates back to world space.
func (g Grid) WorldPoint(c math.Vec3) math.Vec3 {
	return g.Min.Add(c.Mul(g.Dims))
}

func safeDiv(a, b float32) float32 {
	if b == 0 {
		return 0
	}
	return a / b
}

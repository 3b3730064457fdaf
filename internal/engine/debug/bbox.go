// Package debug provides debug visualization utilities.
package debug

import "github.com/Faultbox/voldiff/pkg/math"

// BoxLineStride is the float count per wireframe vertex: position(3) color(4).
const BoxLineStride = 7

// BoxLineVertexCount is the number of vertices for a box wireframe (12 edges × 2).
const BoxLineVertexCount = 24

// boxEdges pairs corner indices of math.AABB.Corners.
var boxEdges = [12][2]int{
	// Bottom face
	{0, 1}, {1, 5}, {5, 4}, {4, 0},
	// Top face
	{2, 3}, {3, 7}, {7, 6}, {6, 2},
	// Vertical edges
	{0, 2}, {1, 3}, {5, 7}, {4, 6},
}

// BoxWireframe returns line vertices for the edges of box, expanded by
// padding on all sides. Format: [x, y, z] per vertex.
func BoxWireframe(box math.AABB, padding float32) []float32 {
	c := pad(box, padding).Corners()
	out := make([]float32, 0, BoxLineVertexCount*3)
	for _, e := range boxEdges {
		a, b := c[e[0]], c[e[1]]
		out = append(out, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	}
	return out
}

// BoxWireframeColored is BoxWireframe with a color per vertex, in the
// BoxLineStride layout.
func BoxWireframeColored(box math.AABB, padding float32, color [4]float32) []float32 {
	pos := BoxWireframe(box, padding)
	out := make([]float32, 0, BoxLineVertexCount*BoxLineStride)
	for i := 0; i+2 < len(pos); i += 3 {
		out = append(out, pos[i], pos[i+1], pos[i+2], color[0], color[1], color[2], color[3])
	}
	return out
}

func pad(box math.AABB, padding float32) math.AABB {
	p := math.V3(padding, padding, padding)
	return math.NewAABB(box.Min.Sub(p), box.Max.Add(p))
}

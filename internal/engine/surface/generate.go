package surface

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/voldiff/pkg/math"
)

// boxFaces lists each face as normal plus four corners in CCW order seen from
// outside, on the unit cube [-1,1]^3.
var boxFaces = [6]struct {
	normal  math.Vec3
	corners [4]math.Vec3
}{
	{math.V3(1, 0, 0), [4]math.Vec3{{X: 1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: 1}}},
	{math.V3(-1, 0, 0), [4]math.Vec3{{X: -1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: 1}, {X: -1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: -1}}},
	{math.V3(0, 1, 0), [4]math.Vec3{{X: -1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1}}},
	{math.V3(0, -1, 0), [4]math.Vec3{{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: 1}, {X: -1, Y: -1, Z: 1}}},
	{math.V3(0, 0, 1), [4]math.Vec3{{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1}}},
	{math.V3(0, 0, -1), [4]math.Vec3{{X: 1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: -1}}},
}

var quadUV = [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

// boxTriangles returns 36 vertices of an axis-aligned box with the given
// half extents, centered on the origin.
func boxTriangles(half math.Vec3, color [4]float32) []Vertex {
	verts := make([]Vertex, 0, 36)
	for _, f := range boxFaces {
		var q [4]Vertex
		for i, c := range f.corners {
			q[i] = Vertex{
				Position: c.Mul(half),
				Normal:   f.normal,
				Color:    color,
				UV:       quadUV[i],
			}
		}
		verts = append(verts, q[0], q[1], q[2], q[0], q[2], q[3])
	}
	return verts
}

// Box creates a colored box with the given full size.
func Box(name string, size math.Vec3, color [4]float32) *Surface {
	s, _ := NewColored(name, boxTriangles(size.Scale(0.5), color))
	return s
}

// TexturedBox creates a textured box with the given full size.
func TexturedBox(name string, size math.Vec3, tex *Texture) (*Surface, error) {
	return NewTextured(name, boxTriangles(size.Scale(0.5), [4]float32{1, 1, 1, 1}), tex)
}

// Sphere creates a colored UV sphere. rings and segments are clamped to at
// least 3.
func Sphere(name string, radius float32, rings, segments int, color [4]float32) *Surface {
	rings = max(rings, 3)
	segments = max(segments, 3)

	point := func(r, s int) Vertex {
		theta := math32.Pi * float32(r) / float32(rings)
		phi := 2 * math32.Pi * float32(s) / float32(segments)
		st, ct := math32.Sincos(theta)
		sp, cp := math32.Sincos(phi)
		n := math.V3(st*cp, ct, st*sp)
		return Vertex{
			Position: n.Scale(radius),
			Normal:   n,
			Color:    color,
			UV:       [2]float32{float32(s) / float32(segments), float32(r) / float32(rings)},
		}
	}

	verts := make([]Vertex, 0, rings*segments*6)
	for r := range rings {
		for s := range segments {
			a, b := point(r, s), point(r, s+1)
			c, d := point(r+1, s), point(r+1, s+1)
			// Degenerate triangles at the poles are skipped.
			if r != 0 {
				verts = append(verts, a, b, d)
			}
			if r != rings-1 {
				verts = append(verts, a, d, c)
			}
		}
	}

	sphere, _ := NewColored(name, verts)
	return sphere
}

// Checker creates a checkerboard texture of cells x cells squares.
func Checker(width, height int32, cells int, a, b [4]float32) *Texture {
	cells = max(cells, 1)
	tex := &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]float32, int(width*height)*4),
	}
	for y := range height {
		for x := range width {
			cx := int(x) * cells / int(width)
			cy := int(y) * cells / int(height)
			c := a
			if (cx+cy)%2 == 1 {
				c = b
			}
			copy(tex.Pixels[(int(y)*int(width)+int(x))*4:], c[:])
		}
	}
	return tex
}

package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/voldiff/pkg/math"
)

func TestBuildGridDeterministic(t *testing.T) {
	vMin := math.V3(-2, -1, 0.5)
	vMax := math.V3(3, 4, 1.5)

	a := BuildGrid(vMin, vMax)
	b := BuildGrid(vMin, vMax)

	assert.Equal(t, a.Vertices(), b.Vertices())
	assert.Equal(t, a.Indices(), b.Indices())
	assert.Len(t, a.Vertices(), 8*GridStride)
	assert.Len(t, a.Indices(), 36)
	assert.Equal(t, math.V3(5, 5, 1), a.Dims)
	assert.Equal(t, float32(5), a.MaxDim)

	swapped := BuildGrid(vMax, vMin)
	assert.True(t, swapped.Same(a))
	assert.Equal(t, a.Vertices(), swapped.Vertices())
}

func TestGridVerticesCarryGridCoords(t *testing.T) {
	g := BuildGrid(math.V3(-1, -2, -3), math.V3(1, 2, 3))
	v := g.Vertices()

	for i := 0; i < 8; i++ {
		pos := math.V3(v[i*GridStride], v[i*GridStride+1], v[i*GridStride+2])
		coord := math.V3(v[i*GridStride+3], v[i*GridStride+4], v[i*GridStride+5])
		assert.True(t, g.GridCoord(pos).ApproxEqual(coord, 1e-6), "corner %d: %+v vs %+v", i, g.GridCoord(pos), coord)
		assert.True(t, g.WorldPoint(coord).ApproxEqual(pos, 1e-6))
	}
}

func TestGridTrianglesFaceOutward(t *testing.T) {
	g := BuildGrid(math.V3(0, 0, 0), math.V3(2, 3, 4))
	v := g.Vertices()
	idx := g.Indices()
	center := g.Bounds().Center()

	corner := func(i uint32) math.Vec3 {
		return math.V3(v[i*GridStride], v[i*GridStride+1], v[i*GridStride+2])
	}

	for tri := 0; tri < 12; tri++ {
		a, b, c := corner(idx[tri*3]), corner(idx[tri*3+1]), corner(idx[tri*3+2])
		n := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Scale(1.0 / 3)
		require.Greater(t, n.Dot(centroid.Sub(center)), float32(0), "triangle %d faces inward", tri)
	}
}

func TestGridZeroExtentAxis(t *testing.T) {
	g := BuildGrid(math.V3(0, 0, 1), math.V3(2, 2, 1))

	assert.Equal(t, float32(0), g.Dims.Z)
	assert.Equal(t, float32(2), g.MaxDim)
	assert.Equal(t, float32(0), g.GridCoord(math.V3(1, 1, 1)).Z)
}

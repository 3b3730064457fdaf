package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/voldiff/pkg/math"
)

func TestDefaultPosition(t *testing.T) {
	c := NewOrbitCamera()
	assert.True(t, c.Position().ApproxEqual(math.V3(0, 0, -20), 1e-4), "got %v", c.Position())
}

func TestAxes(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleDrag(40, 25)

	right, up, forward := c.Axes()
	toCenter := c.Center.Sub(c.Position()).Normalize()

	assert.True(t, forward.ApproxEqual(toCenter, 1e-4))
	assert.InDelta(t, 0, right.Dot(up), 1e-5)
	assert.InDelta(t, 0, right.Dot(forward), 1e-5)
	assert.InDelta(t, 1, right.Length(), 1e-5)
	assert.Greater(t, up.Y, float32(0))
}

func TestDefaultAxesMatchWorld(t *testing.T) {
	// Looking down +Z from -Z: right is -X, up is +Y.
	right, up, forward := NewOrbitCamera().Axes()
	assert.True(t, right.ApproxEqual(math.V3(-1, 0, 0), 1e-4), "right %v", right)
	assert.True(t, up.ApproxEqual(math.V3(0, 1, 0), 1e-4), "up %v", up)
	assert.True(t, forward.ApproxEqual(math.V3(0, 0, 1), 1e-4), "forward %v", forward)
}

func TestDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleDrag(0, 1e6)
	assert.Equal(t, c.MaxPitch, c.RotationX)
	c.HandleDrag(0, -1e6)
	assert.Equal(t, c.MinPitch, c.RotationX)
}

func TestZoomClampsDistance(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleZoom(1)
	assert.InDelta(t, 18, c.Distance, 1e-4)

	for range 100 {
		c.HandleZoom(5)
	}
	assert.Equal(t, c.MinDistance, c.Distance)
}

func TestPanMovesCenterInViewPlane(t *testing.T) {
	c := NewOrbitCamera()
	_, _, forward := c.Axes()
	c.HandlePan(10, -5)

	assert.NotEqual(t, math.Vec3{}, c.Center)
	assert.InDelta(t, 0, c.Center.Dot(forward), 1e-4)
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(math.NewAABB(math.V3(9, -1, -1), math.V3(11, 1, 1)))

	assert.Equal(t, math.V3(10, 0, 0), c.Center)
	assert.Greater(t, c.Distance, float32(1.7))
}

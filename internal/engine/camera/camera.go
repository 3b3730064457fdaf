// Package camera provides the orbit camera used by the viewer.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/voldiff/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32

	// Projection
	FOV   float32 // Vertical field of view (radians)
	ZNear float32
	ZFar  float32
}

// NewOrbitCamera creates a camera at (0, 0, -20) looking at the origin.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        20.0,
		RotationX:       0.0,
		RotationY:       math32.Pi,
		MinDistance:     1.0,
		MaxDistance:     500.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FOV:             math32.Pi / 4,
		ZNear:           0.05,
		ZFar:            1000.0,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sp, cp := math32.Sincos(c.RotationX)
	sy, cy := math32.Sincos(c.RotationY)

	return c.Center.Add(math.V3(
		c.Distance*cp*sy,
		c.Distance*sp,
		c.Distance*cp*cy,
	))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.V3(0, 1, 0))
}

// ProjectionMatrix returns the perspective projection for the given aspect.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FOV, aspect, c.ZNear, c.ZFar)
}

// Axes returns the camera's world-space right, up and forward directions,
// read from the view matrix.
func (c *OrbitCamera) Axes() (right, up, forward math.Vec3) {
	v := c.ViewMatrix()
	right = math.V3(v[0], v[4], v[8])
	up = math.V3(v[1], v[5], v[9])
	forward = math.V3(-v[2], -v[6], -v[10])
	return right, up, forward
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.RotationX = min(max(c.RotationX, c.MinPitch), c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}

// HandlePan moves the center point along the camera's right and up axes.
func (c *OrbitCamera) HandlePan(deltaX, deltaY float32) {
	// Speed scales with distance for consistent feel
	speed := c.Distance * c.DragSensitivity * 0.2
	right, up, _ := c.Axes()
	c.Center = c.Center.Add(right.Scale(-deltaX * speed)).Add(up.Scale(deltaY * speed))
}

// FitToBounds centers the camera on box and backs off until it is in view.
func (c *OrbitCamera) FitToBounds(box math.AABB) {
	c.Center = box.Center()
	radius := box.Size().Length() / 2
	c.Distance = radius / math32.Sin(c.FOV/2)
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}

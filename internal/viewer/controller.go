package viewer

import (
	"github.com/Faultbox/voldiff/internal/config"
	"github.com/Faultbox/voldiff/internal/engine/camera"
	"github.com/Faultbox/voldiff/internal/engine/input"
)

// Mode selects what mouse input controls.
type Mode int

const (
	// ModeRotateScale rotates the controlled surface with the left button
	// and scales it with the wheel.
	ModeRotateScale Mode = iota
	// ModeMove translates the controlled surface in the view plane with the
	// left button and along the view direction with the wheel.
	ModeMove
	// ModeCamera orbits, pans and zooms the camera.
	ModeCamera
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeRotateScale:
		return "rotate"
	case ModeMove:
		return "move"
	case ModeCamera:
		return "camera"
	default:
		return "unknown"
	}
}

// maxWheelStep bounds the per-event scale change so a long frame cannot
// produce a zero or negative factor.
const maxWheelStep = 0.5

// Target receives surface transforms.
type Target interface {
	Translate(dx, dy, dz float32)
	RotateX(angle float32)
	RotateY(angle float32)
	Scale(factor float32)
}

// Controller turns mouse events into surface or camera motion.
type Controller struct {
	Mode Mode

	MouseSpeed     float32
	WheelScaleRate float32
	WheelMoveRate  float32

	target Target
	cam    *camera.OrbitCamera

	lastX, lastY int32
	tracking     bool
}

// NewController creates a controller in rotate & scale mode.
func NewController(cfg config.ControlsConfig, target Target, cam *camera.OrbitCamera) *Controller {
	return &Controller{
		Mode:           ModeRotateScale,
		MouseSpeed:     cfg.MouseSpeed,
		WheelScaleRate: cfg.WheelScaleRate,
		WheelMoveRate:  cfg.WheelMoveRate,
		target:         target,
		cam:            cam,
	}
}

// SetMode switches the interaction mode and restarts drag tracking.
func (c *Controller) SetMode(m Mode) {
	c.Mode = m
	c.tracking = false
}

// Handle applies one input event. dt is the last frame time in seconds;
// drag and wheel motion scale with it.
func (c *Controller) Handle(e input.Event, in *input.Input, dt float32) {
	switch e.Type {
	case input.EventMouseMove:
		if !c.tracking {
			c.lastX, c.lastY = e.MouseX, e.MouseY
			c.tracking = true
		}
		dx := float32(e.MouseX - c.lastX)
		dy := float32(e.MouseY - c.lastY)
		c.lastX, c.lastY = e.MouseX, e.MouseY
		c.drag(dx, dy, in, dt)

	case input.EventMouseDown:
		c.lastX, c.lastY = e.MouseX, e.MouseY
		c.tracking = true

	case input.EventMouseWheel:
		c.wheel(e.Wheel, dt)
	}
}

func (c *Controller) drag(dx, dy float32, in *input.Input, dt float32) {
	if dx == 0 && dy == 0 {
		return
	}
	left := in.ButtonDown(input.ButtonLeft)

	switch c.Mode {
	case ModeRotateScale:
		if left {
			c.target.RotateX(-dy * dt * c.MouseSpeed)
			c.target.RotateY(-dx * dt * c.MouseSpeed)
		}

	case ModeMove:
		if left {
			right, up, _ := c.cam.Axes()
			h := c.MouseSpeed * dx * dt
			v := c.MouseSpeed * -dy * dt
			c.target.Translate(h*right.X, h*right.Y, h*right.Z)
			c.target.Translate(v*up.X, v*up.Y, v*up.Z)
		}

	case ModeCamera:
		switch {
		case left:
			c.cam.HandleDrag(dx, dy)
		case in.ButtonDown(input.ButtonMiddle), in.ButtonDown(input.ButtonRight):
			c.cam.HandlePan(dx, dy)
		}
	}
}

func (c *Controller) wheel(delta int32, dt float32) {
	if delta == 0 {
		return
	}
	sign := float32(1)
	if delta < 0 {
		sign = -1
	}

	switch c.Mode {
	case ModeRotateScale:
		step := min(dt*c.WheelScaleRate, maxWheelStep)
		c.target.Scale(1 + sign*step)

	case ModeMove:
		_, _, forward := c.cam.Axes()
		d := sign * c.WheelMoveRate * dt
		c.target.Translate(d*forward.X, d*forward.Y, d*forward.Z)

	case ModeCamera:
		c.cam.HandleZoom(float32(delta))
	}
}

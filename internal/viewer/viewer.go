// Package viewer drives the interactive frame loop: input, density
// simulation, scene rendering, telemetry and screenshots.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/voldiff/internal/config"
	"github.com/Faultbox/voldiff/internal/engine/camera"
	"github.com/Faultbox/voldiff/internal/engine/debug"
	"github.com/Faultbox/voldiff/internal/engine/density"
	"github.com/Faultbox/voldiff/internal/engine/gpu"
	"github.com/Faultbox/voldiff/internal/engine/input"
	"github.com/Faultbox/voldiff/internal/engine/picking"
	"github.com/Faultbox/voldiff/internal/engine/scene"
	"github.com/Faultbox/voldiff/internal/engine/surface"
	"github.com/Faultbox/voldiff/internal/engine/volume"
	"github.com/Faultbox/voldiff/internal/logger"
	"github.com/Faultbox/voldiff/internal/telemetry"
	"github.com/Faultbox/voldiff/pkg/math"
)

// Ray data scale limits for the +/- keys.
const (
	minRayDataScale  = 0.125
	maxRayDataScale  = 1.0
	rayDataScaleStep = 1.25
)

// Platform is the window the viewer presents to.
type Platform interface {
	PollEvents(in *input.Input)
	DrawableSize() (width, height int32)
	SwapBuffers()
}

// BackBufferReader is implemented by devices that can read back the
// presented frame for screenshots.
type BackBufferReader interface {
	ReadBackBuffer(width, height int32) []byte
}

// Viewer owns everything the interactive frame loop needs.
type Viewer struct {
	cfg      *config.Config
	platform Platform
	dev      gpu.Device
	log      *zap.Logger

	scene      *scene.Scene
	field      *density.Field
	density    *density.Volume
	camera     *camera.OrbitCamera
	controller *Controller
	input      *input.Input

	trace       *telemetry.Recorder
	screenshots *debug.ScreenshotCapture

	width, height int32
	paused        bool
	screenshot    bool
	frame         uint64
}

// DemoSurfaces returns the surfaces loaded at startup. The first one is
// controlled initially.
func DemoSurfaces() ([]*surface.Surface, error) {
	box := surface.Box("box", math.V3(4, 4, 4), [4]float32{0.85, 0.55, 0.25, 1})

	sphere := surface.Sphere("sphere", 2.5, 24, 32, [4]float32{0.3, 0.6, 0.9, 1})
	sphere.Translate(7, 0, 0)

	checker := surface.Checker(64, 64, 8, [4]float32{0.9, 0.9, 0.9, 1}, [4]float32{0.2, 0.2, 0.25, 1})
	crate, err := surface.TexturedBox("crate", math.V3(3, 3, 3), checker)
	if err != nil {
		return nil, fmt.Errorf("creating crate: %w", err)
	}
	crate.Translate(-7, 0, 0)

	return []*surface.Surface{box, sphere, crate}, nil
}

// New builds the scene, density source and camera from cfg.
func New(cfg *config.Config, platform Platform, dev gpu.Device) (*Viewer, error) {
	v := &Viewer{
		cfg:         cfg,
		platform:    platform,
		dev:         dev,
		log:         logger.Named("viewer"),
		input:       input.New(),
		screenshots: debug.NewScreenshotCapture("screenshots", "voldiff"),
	}

	if err := v.init(); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

func (v *Viewer) init() error {
	cfg := v.cfg

	dims := [3]int{cfg.Volume.GridWidth, cfg.Volume.GridHeight, cfg.Volume.GridDepth}
	field, err := density.New(dims, cfg.Density)
	if err != nil {
		return fmt.Errorf("creating density field: %w", err)
	}
	v.field = field

	if v.density, err = density.NewVolume(v.dev, field); err != nil {
		return err
	}

	surfaces, err := DemoSurfaces()
	if err != nil {
		return err
	}
	bounds := surfaces[0].WorldBounds()

	vol, err := volume.New(v.dev, volume.ParamsFromConfig(cfg.Volume), bounds.Min, bounds.Max)
	if err != nil {
		return err
	}

	sc, err := scene.New(v.dev, vol, scene.DefaultOptions(), surfaces...)
	if err != nil {
		return err
	}
	v.scene = sc

	v.width, v.height = v.platform.DrawableSize()
	if err := v.scene.SetScreenSize(v.width, v.height); err != nil {
		return err
	}

	v.camera = NewCamera(cfg.Graphics)

	v.controller = NewController(cfg.Controls, v.scene, v.camera)

	if v.trace, err = telemetry.NewRecorder(cfg.Telemetry.TraceFile, cfg.Telemetry.Interval); err != nil {
		return err
	}

	v.log.Info("viewer ready",
		zap.Int("surfaces", len(surfaces)),
		zap.Ints("grid", dims[:]),
		zap.Int32("width", v.width),
		zap.Int32("height", v.height),
		zap.String("trace", v.trace.Path()))
	return nil
}

// Scene returns the scene.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Camera returns the camera.
func (v *Viewer) Camera() *camera.OrbitCamera { return v.camera }

// Controller returns the mouse controller.
func (v *Viewer) Controller() *Controller { return v.controller }

// Field returns the density field.
func (v *Viewer) Field() *density.Field { return v.field }

// Paused reports whether the density simulation is paused.
func (v *Viewer) Paused() bool { return v.paused }

// View returns the camera state for the current screen size.
func (v *Viewer) View() volume.View {
	return ViewFrom(v.camera, v.width, v.height)
}

// ViewFrom returns the volume view of cam for a width x height screen.
func ViewFrom(cam *camera.OrbitCamera, width, height int32) volume.View {
	aspect := float32(width) / float32(max(height, 1))
	proj := cam.ProjectionMatrix(aspect)
	return volume.View{
		ViewProj: proj.Mul(cam.ViewMatrix()),
		Eye:      cam.Position(),
		ZNear:    cam.ZNear,
		ZFar:     cam.ZFar,
	}
}

// NewCamera returns the default orbit camera with the projection of g.
func NewCamera(g config.GraphicsConfig) *camera.OrbitCamera {
	cam := camera.NewOrbitCamera()
	cam.FOV = g.FOV * math32.Pi / 180
	cam.ZNear = g.ZNear
	cam.ZFar = g.ZFar
	return cam
}

// Frame runs one iteration of the loop. It returns false once the user
// asked to quit.
func (v *Viewer) Frame(dt float32) (bool, error) {
	v.platform.PollEvents(v.input)
	if v.input.QuitRequested() {
		return false, nil
	}

	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			if err := v.resize(e.Width, e.Height); err != nil {
				return false, err
			}
		case input.EventKeyDown:
			if !v.handleKey(e.Key) {
				return false, nil
			}
		case input.EventMouseDown:
			if e.Button == input.ButtonRight && v.controller.Mode != ModeCamera {
				v.pick(e.MouseX, e.MouseY)
			}
			v.controller.Handle(e, v.input, dt)
		default:
			v.controller.Handle(e, v.input, dt)
		}
	}

	if !v.paused {
		v.field.Step()
		if err := v.density.Sync(); err != nil {
			return false, err
		}
	}

	stats, err := v.scene.Render(v.density, v.View())
	if err != nil {
		return false, err
	}

	if err := v.record(stats, dt); err != nil {
		v.log.Warn("frame trace disabled", zap.Error(err))
		v.trace.Close()
		v.trace = nil
	}

	if v.screenshot {
		v.screenshot = false
		v.capture()
	}

	v.platform.SwapBuffers()
	v.frame++
	return true, nil
}

func (v *Viewer) resize(width, height int32) error {
	if width < 1 || height < 1 || (width == v.width && height == v.height) {
		return nil
	}
	if err := v.scene.SetScreenSize(width, height); err != nil {
		return err
	}
	v.width, v.height = width, height
	return nil
}

// handleKey applies a key binding. It returns false for quit.
func (v *Viewer) handleKey(k input.Key) bool {
	vol := v.scene.Volume()

	switch k {
	case input.KeyEscape:
		return false
	case input.KeyTab:
		idx := v.scene.ChangeControlledSurface()
		v.log.Info("controlling surface", zap.Int("index", idx), zap.String("name", v.scene.Controlled().Name()))
	case input.Key1:
		v.setMode(ModeRotateScale)
	case input.Key2:
		v.setMode(ModeMove)
	case input.Key3:
		v.setMode(ModeCamera)
	case input.KeyE:
		vol.SetEdges(!vol.Params().Edges)
	case input.KeyG:
		vol.SetGlow(!vol.Params().Glow)
	case input.KeyB:
		v.scene.Options.ShowGridBox = !v.scene.Options.ShowGridBox
	case input.KeySpace:
		v.paused = !v.paused
	case input.KeyI:
		v.field.Inject(math.V3(0.5, 0.5, 0.5), 0.25, 0.5)
	case input.KeyR:
		*v.camera = *NewCamera(v.cfg.Graphics)
	case input.KeyPlus:
		v.setRayDataScale(vol.Params().RayDataScale * rayDataScaleStep)
	case input.KeyMinus:
		v.setRayDataScale(vol.Params().RayDataScale / rayDataScaleStep)
	case input.KeyF12:
		v.screenshot = true
	}
	return true
}

// pick makes the surface under the cursor the controlled one.
func (v *Viewer) pick(x, y int32) {
	inv := v.View().ViewProj.Inverse()
	ray := picking.ScreenToRay(float32(x)+0.5, float32(y)+0.5, float32(v.width), float32(v.height), inv)
	idx, ok := v.scene.PickSurface(ray)
	if !ok {
		return
	}
	v.log.Info("picked surface", zap.Int("index", idx), zap.String("name", v.scene.Controlled().Name()))
}

func (v *Viewer) setMode(m Mode) {
	v.controller.SetMode(m)
	v.log.Info("interaction mode", zap.Stringer("mode", m))
}

func (v *Viewer) setRayDataScale(scale float32) {
	scale = min(max(scale, minRayDataScale), maxRayDataScale)
	if err := v.scene.Volume().SetRayDataScale(scale); err != nil {
		v.log.Error("changing ray data scale", zap.Float32("scale", scale), zap.Error(err))
		return
	}
	w, h := v.scene.Volume().RayDataSize()
	v.log.Info("ray data resolution", zap.Float32("scale", scale), zap.Int32("width", w), zap.Int32("height", h))
}

func (v *Viewer) record(stats volume.FrameStats, dt float32) error {
	size := v.scene.Controlled().WorldBounds().Size()
	return v.trace.Record(telemetry.FrameRecord{
		Frame:         v.frame,
		FrameTimeMS:   dt * 1000,
		ScreenWidth:   v.width,
		ScreenHeight:  v.height,
		RayDataWidth:  stats.RayDataWidth,
		RayDataHeight: stats.RayDataHeight,
		Passes:        stats.Passes,
		GridRebuilt:   stats.GridRebuilt,
		Skipped:       stats.Skipped,
		Controlled:    v.scene.ControlledIndex(),
		GridSizeX:     size.X,
		GridSizeY:     size.Y,
		GridSizeZ:     size.Z,
		DensityMass:   v.field.Mass(),
	})
}

func (v *Viewer) capture() {
	reader, ok := v.dev.(BackBufferReader)
	if !ok {
		v.log.Warn("device cannot read back frames, screenshot skipped")
		return
	}
	pixels := reader.ReadBackBuffer(v.width, v.height)
	path, err := v.screenshots.CaptureFromPixels(pixels, int(v.width), int(v.height))
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

// Run loops until the user quits or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	last := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		running, err := v.Frame(dt)
		if err != nil {
			return fmt.Errorf("frame %d: %w", v.frame, err)
		}
		if !running {
			v.log.Info("viewer closed", zap.Uint64("frames", v.frame))
			return nil
		}
	}
}

// Close releases every resource and closes the trace.
func (v *Viewer) Close() error {
	var err error
	if v.trace != nil {
		err = v.trace.Close()
		v.trace = nil
	}
	if v.scene != nil {
		v.scene.Release()
		v.scene = nil
	}
	if v.density != nil {
		v.density.Release()
		v.density = nil
	}
	return err
}

// Package scene couples the loaded surfaces to the volume renderer.
//
// One surface at a time is controlled: transforms are forwarded to it and its
// world bounds define the volume grid. Render re-queries those bounds every
// frame before any volume pass runs, so the grid always matches the surface.
package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/voldiff/internal/engine/gpu"
	"github.com/Faultbox/voldiff/internal/engine/picking"
	"github.com/Faultbox/voldiff/internal/engine/surface"
	"github.com/Faultbox/voldiff/internal/engine/volume"
	"github.com/Faultbox/voldiff/internal/logger"
	"github.com/Faultbox/voldiff/pkg/math"
)

var (
	// ErrNoSurfaces is returned by Render when no surface is loaded.
	ErrNoSurfaces = errors.New("scene: no surfaces loaded")
	// ErrNoScreen is returned by Render before the first SetScreenSize.
	ErrNoScreen = errors.New("scene: screen size not set")
)

// Options contains scene appearance settings.
type Options struct {
	Background   [4]float32
	EdgeColor    [4]float32
	LightDir     math.Vec3
	Ambient      [3]float32
	ShowGridBox  bool
	GridBoxColor [4]float32
}

// DefaultOptions returns the default scene appearance.
func DefaultOptions() Options {
	return Options{
		Background:   [4]float32{0.05, 0.05, 0.08, 1},
		EdgeColor:    [4]float32{0.1, 0.1, 0.1, 1},
		LightDir:     math.V3(0.5, 0.866, 0.3),
		Ambient:      [3]float32{0.3, 0.3, 0.3},
		GridBoxColor: [4]float32{1, 1, 0, 1},
	}
}

// Scene owns the surfaces, the surface renderer and the volume renderer.
type Scene struct {
	Options Options

	dev      gpu.Device
	volume   *volume.Renderer
	surfaces *SurfaceRenderer
	log      *zap.Logger

	list       []*surface.Surface
	controlled int

	width, height int32
	hasScreen     bool
}

// New creates a scene drawing with dev. The scene takes ownership of vol:
// it is released in Release, or before New returns an error.
func New(dev gpu.Device, vol *volume.Renderer, opts Options, surfaces ...*surface.Surface) (*Scene, error) {
	sr, err := NewSurfaceRenderer(dev)
	if err != nil {
		vol.Release()
		return nil, fmt.Errorf("creating surface renderer: %w", err)
	}
	return &Scene{
		Options:  opts,
		dev:      dev,
		volume:   vol,
		surfaces: sr,
		log:      logger.Named("scene"),
		list:     surfaces,
	}, nil
}

// Add appends a surface. The controlled surface does not change.
func (s *Scene) Add(surf *surface.Surface) {
	s.list = append(s.list, surf)
}

// Surfaces returns the loaded surfaces.
func (s *Scene) Surfaces() []*surface.Surface { return s.list }

// Volume returns the volume renderer.
func (s *Scene) Volume() *volume.Renderer { return s.volume }

// ControlledIndex returns the index of the controlled surface.
func (s *Scene) ControlledIndex() int { return s.controlled }

// Controlled returns the controlled surface, nil when none is loaded.
func (s *Scene) Controlled() *surface.Surface {
	if len(s.list) == 0 {
		return nil
	}
	return s.list[s.controlled]
}

// ChangeControlledSurface selects the next surface, wrapping around, and
// returns its index.
func (s *Scene) ChangeControlledSurface() int {
	if len(s.list) == 0 {
		return 0
	}
	s.controlled = (s.controlled + 1) % len(s.list)
	s.log.Debug("controlled surface changed",
		zap.Int("index", s.controlled),
		zap.String("name", s.list[s.controlled].Name()))
	return s.controlled
}

// Translate moves the controlled surface.
func (s *Scene) Translate(dx, dy, dz float32) {
	if c := s.Controlled(); c != nil {
		c.Translate(dx, dy, dz)
	}
}

// RotateX rotates the controlled surface around X.
func (s *Scene) RotateX(angle float32) {
	if c := s.Controlled(); c != nil {
		c.RotateX(angle)
	}
}

// RotateY rotates the controlled surface around Y.
func (s *Scene) RotateY(angle float32) {
	if c := s.Controlled(); c != nil {
		c.RotateY(angle)
	}
}

// RotateZ rotates the controlled surface around Z.
func (s *Scene) RotateZ(angle float32) {
	if c := s.Controlled(); c != nil {
		c.RotateZ(angle)
	}
}

// Scale scales the controlled surface.
func (s *Scene) Scale(factor float32) {
	if c := s.Controlled(); c != nil {
		c.Scale(factor)
	}
}

// PickSurface makes the nearest surface whose world bounds the ray hits the
// controlled one. It reports whether any surface was hit.
func (s *Scene) PickSurface(ray picking.Ray) (int, bool) {
	best, bestT := -1, float32(0)
	for i, surf := range s.list {
		t, hit := ray.IntersectAABB(surf.WorldBounds())
		if hit && (best < 0 || t < bestT) {
			best, bestT = i, t
		}
	}
	if best < 0 {
		return s.controlled, false
	}
	s.controlled = best
	return best, true
}

// SetScreenSize resizes the back buffer viewport and the volume targets.
func (s *Scene) SetScreenSize(width, height int32) error {
	if err := s.volume.SetScreenSize(width, height); err != nil {
		s.hasScreen = false
		return err
	}
	s.width, s.height = width, height
	s.hasScreen = true
	return nil
}

// Render draws the surfaces, then the volume bounded by the controlled
// surface's current world bounds.
func (s *Scene) Render(src volume.DensitySource, view volume.View) (volume.FrameStats, error) {
	c := s.Controlled()
	if c == nil {
		return volume.FrameStats{}, ErrNoSurfaces
	}
	if !s.hasScreen {
		return volume.FrameStats{}, ErrNoScreen
	}

	bounds := c.WorldBounds()

	f := frame{
		width:        s.width,
		height:       s.height,
		viewProj:     view.ViewProj,
		background:   s.Options.Background,
		lightDir:     s.Options.LightDir,
		ambient:      s.Options.Ambient,
		edgeColor:    s.Options.EdgeColor,
		gridBoxColor: s.Options.GridBoxColor,
	}
	if s.Options.ShowGridBox {
		f.gridBox = &bounds
	}
	if err := s.surfaces.Render(s.list, f); err != nil {
		return volume.FrameStats{}, fmt.Errorf("drawing surfaces: %w", err)
	}

	stats, err := s.volume.Draw(src, bounds.Min, bounds.Max, view)
	if err != nil {
		return stats, fmt.Errorf("drawing volume: %w", err)
	}
	return stats, nil
}

// Release frees the surface and volume renderers.
func (s *Scene) Release() {
	s.surfaces.Release()
	s.volume.Release()
	s.hasScreen = false
}

package volume

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/voldiff/internal/engine/gpu"
	"github.com/Faultbox/voldiff/internal/logger"
	"github.com/Faultbox/voldiff/pkg/math"
)

var (
	// ErrNoScreen is returned by Draw before the first SetScreenSize.
	ErrNoScreen = errors.New("volume: screen size not set")
	// ErrInvalidScreenSize is returned for non-positive screen sizes.
	ErrInvalidScreenSize = errors.New("volume: invalid screen size")
)

// DensitySource is the externally owned 3-D density texture.
type DensitySource interface {
	Texture() gpu.Texture
	Dims() [3]int32
}

// FrameStats describes one Draw call.
type FrameStats struct {
	RayDataWidth  int32
	RayDataHeight int32
	GridRebuilt   bool
	// Skipped is set when the density source did not match the configured
	// grid dimensions and the ray cast pass only cleared its target.
	Skipped bool
	Passes  int
}

// Renderer owns every GPU resource of the volume pipeline. Programs, meshes
// and the transfer ramp live for the renderer's lifetime; screen-size targets
// are released and recreated on every SetScreenSize.
type Renderer struct {
	dev    gpu.Device
	params Params
	log    *zap.Logger

	static gpu.Pool
	screen gpu.Pool

	rayData   *rayDataStage
	rayCaster *rayCastStage
	compose   *compositeStage

	grid     Grid
	gridMesh gpu.Mesh
	quad     gpu.Mesh

	screenW, screenH int32
	hasScreen        bool
	front, back      gpu.Target
	rayCast          gpu.Target
	edges            gpu.Target

	mismatched bool
}

// New creates the renderer with an initial grid spanning vMin..vMax.
// Screen targets are not allocated until SetScreenSize.
func New(dev gpu.Device, p Params, vMin, vMax math.Vec3) (*Renderer, error) {
	r := &Renderer{
		dev:    dev,
		params: p,
		log:    logger.Named("volume"),
		grid:   BuildGrid(vMin, vMax),
	}

	if err := r.init(); err != nil {
		r.static.Release()
		return nil, fmt.Errorf("creating volume renderer: %w", err)
	}

	r.log.Debug("volume renderer ready",
		zap.Int32s("gridDims", r.params.GridDims[:]),
		zap.Float32("rayDataScale", r.params.RayDataScale))
	return r, nil
}

func (r *Renderer) init() error {
	var err error
	if r.rayData, err = newRayDataStage(r.dev, &r.static); err != nil {
		return err
	}
	if r.rayCaster, err = newRayCastStage(r.dev, &r.static, r.params.ramp()); err != nil {
		return err
	}
	if r.compose, err = newCompositeStage(r.dev, &r.static); err != nil {
		return err
	}
	if r.quad, err = newQuad(r.dev, &r.static); err != nil {
		return err
	}
	r.gridMesh, err = r.static.Mesh(r.dev, gpu.MeshDesc{
		Label:    "grid-box",
		Vertices: r.grid.Vertices(),
		Indices:  r.grid.Indices(),
		Stride:   GridStride,
		Attribs: []gpu.Attrib{
			{Location: 0, Components: 3, Offset: 0},
			{Location: 1, Components: 3, Offset: 3},
		},
		Dynamic: true,
	})
	return err
}

// SetScreenSize releases and recreates every screen-size target. On failure
// no target is kept and Draw returns ErrNoScreen until a later call succeeds.
func (r *Renderer) SetScreenSize(width, height int32) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidScreenSize, width, height)
	}

	r.screen.Release()
	r.hasScreen = false
	r.front, r.back, r.rayCast, r.edges = nil, nil, nil, nil

	if err := r.createTargets(width, height); err != nil {
		r.screen.Release()
		r.front, r.back, r.rayCast, r.edges = nil, nil, nil, nil
		return fmt.Errorf("creating ray data targets: %w", err)
	}

	r.screenW, r.screenH = width, height
	r.hasScreen = true

	rw, rh := r.front.Size()
	r.log.Info("volume targets recreated",
		zap.Int32("screenWidth", width), zap.Int32("screenHeight", height),
		zap.Int32("rayDataWidth", rw), zap.Int32("rayDataHeight", rh))
	return nil
}

func (r *Renderer) createTargets(width, height int32) error {
	rw, rh := RayDataSize(width, height, r.params.RayDataScale, r.dev.MaxTextureSize())

	var err error
	rayDesc := gpu.TargetDesc{Width: rw, Height: rh, Format: gpu.FormatRGBA32F, Filter: gpu.FilterNearest, DepthBuffer: true}

	rayDesc.Label = "raydata-front"
	if r.front, err = r.screen.Target(r.dev, rayDesc); err != nil {
		return err
	}
	rayDesc.Label = "raydata-back"
	if r.back, err = r.screen.Target(r.dev, rayDesc); err != nil {
		return err
	}
	if r.rayCast, err = r.screen.Target(r.dev, gpu.TargetDesc{
		Label: "raycast", Width: rw, Height: rh, Format: gpu.FormatRGBA16F, Filter: gpu.FilterLinear,
	}); err != nil {
		return err
	}
	r.edges, err = r.screen.Target(r.dev, gpu.TargetDesc{
		Label: "edges", Width: width, Height: height, Format: gpu.FormatRGBA8, Filter: gpu.FilterNearest,
	})
	return err
}

// SetRayDataScale changes the reduction factor and recreates the targets if
// a screen size is known.
func (r *Renderer) SetRayDataScale(scale float32) error {
	r.params.RayDataScale = scale
	if !r.hasScreen {
		return nil
	}
	return r.SetScreenSize(r.screenW, r.screenH)
}

// SetEdges toggles the edge overlay.
func (r *Renderer) SetEdges(on bool) { r.params.Edges = on }

// SetGlow toggles the glow post-process.
func (r *Renderer) SetGlow(on bool) { r.params.Glow = on }

// Params returns the current parameters.
func (r *Renderer) Params() Params { return r.params }

// Grid returns the grid used by the last Draw.
func (r *Renderer) Grid() Grid { return r.grid }

// RayDataSize returns the current reduced resolution, zero before
// SetScreenSize.
func (r *Renderer) RayDataSize() (width, height int32) {
	if !r.hasScreen {
		return 0, 0
	}
	return r.front.Size()
}

// Draw renders the volume between vMin and vMax into the back buffer. The
// grid mesh is rebuilt only when the bounds differ from the previous frame.
func (r *Renderer) Draw(src DensitySource, vMin, vMax math.Vec3, view View) (FrameStats, error) {
	if !r.hasScreen {
		return FrameStats{}, ErrNoScreen
	}

	var stats FrameStats
	stats.RayDataWidth, stats.RayDataHeight = r.front.Size()

	if g := BuildGrid(vMin, vMax); !g.Same(r.grid) {
		if err := r.dev.UpdateMesh(r.gridMesh, g.Vertices()); err != nil {
			return stats, fmt.Errorf("updating grid mesh: %w", err)
		}
		r.grid = g
		stats.GridRebuilt = true
	}

	density := r.checkSource(src)
	stats.Skipped = density == nil

	r.rayData.render(r.dev, r.front, r.back, r.gridMesh, view)
	r.rayCaster.render(r.dev, r.rayCast, r.front, r.back, r.quad, density, r.grid, view, r.params)
	stats.Passes = 3
	if r.params.Edges {
		r.compose.edges(r.dev, r.edges, r.front, r.quad, r.grid, r.params)
		stats.Passes++
	}
	r.compose.composite(r.dev, r.screenW, r.screenH, r.rayCast, r.edges, r.quad, r.params)
	stats.Passes++

	return stats, nil
}

// checkSource returns the density texture, or nil when the source does not
// match the configured grid. Mismatches are logged once per occurrence.
func (r *Renderer) checkSource(src DensitySource) gpu.Texture {
	var tex gpu.Texture
	var dims [3]int32
	if src != nil {
		tex = src.Texture()
		dims = src.Dims()
	}

	ok := tex != nil && dims == r.params.GridDims
	if ok {
		w, h, d := tex.Size()
		ok = [3]int32{w, h, d} == r.params.GridDims
	}

	if !ok {
		if !r.mismatched {
			r.log.Warn("density source does not match grid, skipping ray cast",
				zap.Int32s("expected", r.params.GridDims[:]),
				zap.Int32s("got", dims[:]))
		}
		r.mismatched = true
		return nil
	}
	r.mismatched = false
	return tex
}

// Release frees every resource. The renderer must not be used afterwards.
func (r *Renderer) Release() {
	r.screen.Release()
	r.static.Release()
	r.hasScreen = false
}

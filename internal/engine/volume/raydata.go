package volume

import (
	"github.com/Faultbox/voldiff/internal/engine/gpu"
	"github.com/Faultbox/voldiff/internal/engine/volume/shaders"
)

// Pass names, in submission order.
const (
	PassRayDataFront = "raydata-front"
	PassRayDataBack  = "raydata-back"
	PassRayCast      = "raycast"
	PassEdges        = "edges"
	PassComposite    = "composite"
)

// rayDataStage rasterizes the grid into the front and back ray data targets.
// Each texel receives the grid coordinate and view distance of the nearest
// front face or the farthest back face. Cleared texels keep distance 0.
type rayDataStage struct {
	prog gpu.Program
}

func newRayDataStage(dev gpu.Device, pool *gpu.Pool) (*rayDataStage, error) {
	prog, err := pool.Program(dev, "raydata", shaders.RayDataVertexShader, shaders.RayDataFragmentShader)
	if err != nil {
		return nil, err
	}
	return &rayDataStage{prog: prog}, nil
}

func (s *rayDataStage) render(dev gpu.Device, front, back gpu.Target, grid gpu.Mesh, view View) {
	w, h := front.Size()
	uniforms := []gpu.Uniform{
		{Name: "uViewProj", Value: view.ViewProj},
		{Name: "uEye", Value: view.Eye},
	}

	dev.BeginPass(gpu.Pass{
		Name:     PassRayDataFront,
		Target:   front,
		Viewport: gpu.Full(w, h),
		Clear:    gpu.Clear{Color: gpu.ClearColor(0, 0, 0, 0), Depth: gpu.ClearDepth(1)},
	})
	dev.Draw(gpu.DrawCall{
		Label:    "grid-front",
		Program:  s.prog,
		Mesh:     grid,
		State:    gpu.State{Cull: gpu.CullBack, Depth: gpu.DepthLess, DepthWrite: true},
		Uniforms: uniforms,
	})
	dev.EndPass()

	dev.BeginPass(gpu.Pass{
		Name:     PassRayDataBack,
		Target:   back,
		Viewport: gpu.Full(w, h),
		Clear:    gpu.Clear{Color: gpu.ClearColor(0, 0, 0, 0), Depth: gpu.ClearDepth(0)},
	})
	dev.Draw(gpu.DrawCall{
		Label:    "grid-back",
		Program:  s.prog,
		Mesh:     grid,
		State:    gpu.State{Cull: gpu.CullFront, Depth: gpu.DepthGreater, DepthWrite: true},
		Uniforms: uniforms,
	})
	dev.EndPass()
}

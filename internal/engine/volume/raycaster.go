package volume

import (
	"github.com/Faultbox/voldiff/internal/engine/gpu"
	"github.com/Faultbox/voldiff/internal/engine/volume/shaders"
)

// rayCastStage marches every reduced-resolution pixel through the density
// texture and writes straight RGBA into the ray cast target.
type rayCastStage struct {
	prog gpu.Program
	ramp gpu.Texture
}

func newRayCastStage(dev gpu.Device, pool *gpu.Pool, ramp Ramp) (*rayCastStage, error) {
	prog, err := pool.Program(dev, "raycast", shaders.QuadVertexShader, shaders.RayCastFragmentShader)
	if err != nil {
		return nil, err
	}
	tex, err := pool.Texture(dev, gpu.TextureDesc{
		Label:  "transfer-ramp",
		Width:  RampSize,
		Height: 1,
		Format: gpu.FormatRGBA32F,
		Filter: gpu.FilterLinear,
	}, ramp.Bake())
	if err != nil {
		return nil, err
	}
	return &rayCastStage{prog: prog, ramp: tex}, nil
}

// render draws the ray cast pass. A nil density skips the march and leaves
// the target cleared to transparent.
func (s *rayCastStage) render(dev gpu.Device, out, front, back gpu.Target, quad gpu.Mesh,
	density gpu.Texture, grid Grid, view View, p Params) {
	w, h := out.Size()
	dev.BeginPass(gpu.Pass{
		Name:     PassRayCast,
		Target:   out,
		Viewport: gpu.Full(w, h),
		Clear:    gpu.Clear{Color: gpu.ClearColor(0, 0, 0, 0)},
	})
	defer dev.EndPass()

	if density == nil {
		return
	}

	dev.Draw(gpu.DrawCall{
		Label:   "raycast",
		Program: s.prog,
		Mesh:    quad,
		Uniforms: []gpu.Uniform{
			{Name: "uEyeOnGrid", Value: grid.GridCoord(view.Eye)},
			{Name: "uMaxDim", Value: grid.MaxDim},
			{Name: "uZFar", Value: view.ZFar},
			{Name: "uStepCount", Value: int32(max(p.StepCount, 1))},
			{Name: "uMaxSteps", Value: int32(max(p.MaxSteps, 1))},
			{Name: "uOpacityEpsilon", Value: p.OpacityEpsilon},
			{Name: "uColorMultiplier", Value: p.ColorMultiplier},
			{Name: "uAlphaMultiplier", Value: p.AlphaMultiplier},
			{Name: "uRampSize", Value: float32(RampSize)},
		},
		Textures: []gpu.Binding{
			{Name: "uFront", Unit: 0, Texture: front.Texture()},
			{Name: "uBack", Unit: 1, Texture: back.Texture()},
			{Name: "uRamp", Unit: 2, Texture: s.ramp},
			{Name: "uDensity", Unit: 3, Texture: density},
		},
	})
}


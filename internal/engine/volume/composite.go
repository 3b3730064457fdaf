package volume

import (
	"github.com/Faultbox/voldiff/internal/engine/gpu"
	"github.com/Faultbox/voldiff/internal/engine/volume/shaders"
)

// quadVertices is a full-screen triangle pair in NDC.
var quadVertices = []float32{
	-1, -1, 1, -1, 1, 1,
	-1, -1, 1, 1, -1, 1,
}

// compositeStage runs the edge pass and blends the ray cast image over the
// back buffer.
type compositeStage struct {
	edgeProg      gpu.Program
	compositeProg gpu.Program
}

func newCompositeStage(dev gpu.Device, pool *gpu.Pool) (*compositeStage, error) {
	edgeProg, err := pool.Program(dev, "edges", shaders.QuadVertexShader, shaders.EdgesFragmentShader)
	if err != nil {
		return nil, err
	}
	compositeProg, err := pool.Program(dev, "composite", shaders.QuadVertexShader, shaders.CompositeFragmentShader)
	if err != nil {
		return nil, err
	}
	return &compositeStage{edgeProg: edgeProg, compositeProg: compositeProg}, nil
}

func newQuad(dev gpu.Device, pool *gpu.Pool) (gpu.Mesh, error) {
	return pool.Mesh(dev, gpu.MeshDesc{
		Label:    "screen-quad",
		Vertices: quadVertices,
		Stride:   2,
		Attribs:  []gpu.Attrib{{Location: 0, Components: 2}},
	})
}

// edges writes 1 into the edge target wherever coverage or entry distance of
// the front ray data changes sharply.
func (s *compositeStage) edges(dev gpu.Device, out, front gpu.Target, quad gpu.Mesh, grid Grid, p Params) {
	w, h := out.Size()
	fw, fh := front.Size()

	dev.BeginPass(gpu.Pass{
		Name:     PassEdges,
		Target:   out,
		Viewport: gpu.Full(w, h),
		Clear:    gpu.Clear{Color: gpu.ClearColor(0, 0, 0, 0)},
	})
	dev.Draw(gpu.DrawCall{
		Label:   "edges",
		Program: s.edgeProg,
		Mesh:    quad,
		Uniforms: []gpu.Uniform{
			{Name: "uTexel", Value: [2]float32{1 / float32(fw), 1 / float32(fh)}},
			{Name: "uMaxDim", Value: grid.MaxDim},
			{Name: "uThreshold", Value: p.EdgeThreshold},
		},
		Textures: []gpu.Binding{{Name: "uFront", Unit: 0, Texture: front.Texture()}},
	})
	dev.EndPass()
}

// composite premultiplies the straight ray-cast color and blends it over the
// back buffer.
func (s *compositeStage) composite(dev gpu.Device, screenW, screenH int32, rayCast, edges gpu.Target, quad gpu.Mesh, p Params) {
	rw, rh := rayCast.Size()

	dev.BeginPass(gpu.Pass{
		Name:     PassComposite,
		Viewport: gpu.Full(screenW, screenH),
	})
	dev.Draw(gpu.DrawCall{
		Label:   "composite",
		Program: s.compositeProg,
		Mesh:    quad,
		State:   gpu.State{Blend: gpu.BlendPremultiplied},
		Uniforms: []gpu.Uniform{
			{Name: "uRayCastTexel", Value: [2]float32{1 / float32(rw), 1 / float32(rh)}},
			{Name: "uIntensity", Value: p.FinalIntensityScale},
			{Name: "uAlphaScale", Value: p.FinalAlphaScale},
			{Name: "uGlow", Value: boolInt(p.Glow)},
			{Name: "uGlowContribution", Value: p.GlowContribution},
			{Name: "uEdgesOn", Value: boolInt(p.Edges)},
			{Name: "uEdgeColor", Value: p.EdgeColor},
		},
		Textures: []gpu.Binding{
			{Name: "uRayCast", Unit: 0, Texture: rayCast.Texture()},
			{Name: "uEdges", Unit: 1, Texture: edges.Texture()},
		},
	})
	dev.EndPass()
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

package scene

import (
	"fmt"

	"github.com/Faultbox/voldiff/internal/engine/debug"
	"github.com/Faultbox/voldiff/internal/engine/gpu"
	"github.com/Faultbox/voldiff/internal/engine/scene/shaders"
	"github.com/Faultbox/voldiff/internal/engine/surface"
	"github.com/Faultbox/voldiff/pkg/math"
)

// PassSurfaces is the back buffer pass that draws the surfaces.
const PassSurfaces = "surfaces"

// surfaceMeshes are the GPU copies of one surface.
type surfaceMeshes struct {
	triangles gpu.Mesh
	edges     gpu.Mesh
	texture   gpu.Texture
	version   uint64
}

// SurfaceRenderer draws surface triangles and edge lines into the back
// buffer. GPU copies are created on first draw and re-uploaded when the
// surface's vertex data changes.
type SurfaceRenderer struct {
	dev  gpu.Device
	pool gpu.Pool

	surfaceProg gpu.Program
	lineProg    gpu.Program
	gridBox     gpu.Mesh

	meshes map[*surface.Surface]*surfaceMeshes
}

// NewSurfaceRenderer compiles the surface and line programs.
func NewSurfaceRenderer(dev gpu.Device) (*SurfaceRenderer, error) {
	sr := &SurfaceRenderer{
		dev:    dev,
		meshes: make(map[*surface.Surface]*surfaceMeshes),
	}

	var err error
	if sr.surfaceProg, err = sr.pool.Program(dev, "surface", shaders.SurfaceVertexShader, shaders.SurfaceFragmentShader); err != nil {
		sr.pool.Release()
		return nil, fmt.Errorf("surface shader: %w", err)
	}
	if sr.lineProg, err = sr.pool.Program(dev, "line", shaders.LineVertexShader, shaders.LineFragmentShader); err != nil {
		sr.pool.Release()
		return nil, fmt.Errorf("line shader: %w", err)
	}
	if sr.gridBox, err = sr.pool.Mesh(dev, gpu.MeshDesc{
		Label:    "grid-wireframe",
		Vertices: make([]float32, debug.BoxLineVertexCount*debug.BoxLineStride),
		Stride:   debug.BoxLineStride,
		Attribs:  lineAttribs,
		Topology: gpu.Lines,
		Dynamic:  true,
	}); err != nil {
		sr.pool.Release()
		return nil, fmt.Errorf("grid wireframe: %w", err)
	}
	return sr, nil
}

var (
	coloredAttribs = []gpu.Attrib{
		{Location: 0, Components: 3, Offset: 0},
		{Location: 1, Components: 3, Offset: 3},
		{Location: 2, Components: 4, Offset: 6},
	}
	texturedAttribs = []gpu.Attrib{
		{Location: 0, Components: 3, Offset: 0},
		{Location: 1, Components: 3, Offset: 3},
		{Location: 3, Components: 2, Offset: 6},
	}
	lineAttribs = []gpu.Attrib{
		{Location: 0, Components: 3, Offset: 0},
		{Location: 1, Components: 4, Offset: 3},
	}
)

// upload creates or refreshes the GPU copies of s.
func (sr *SurfaceRenderer) upload(s *surface.Surface, edgeColor [4]float32) (*surfaceMeshes, error) {
	m, ok := sr.meshes[s]
	if ok {
		if m.version == s.Version() {
			return m, nil
		}
		if err := sr.dev.UpdateMesh(m.triangles, s.TriangleData()); err != nil {
			return nil, fmt.Errorf("updating %s triangles: %w", s.Name(), err)
		}
		if err := sr.dev.UpdateMesh(m.edges, s.EdgeData(edgeColor)); err != nil {
			return nil, fmt.Errorf("updating %s edges: %w", s.Name(), err)
		}
		m.version = s.Version()
		return m, nil
	}

	m = &surfaceMeshes{version: s.Version()}
	stride, attribs := surface.ColoredStride, coloredAttribs
	if s.Kind() == surface.TexturedMesh {
		stride, attribs = surface.TexturedStride, texturedAttribs
	}

	var err error
	if m.triangles, err = sr.pool.Mesh(sr.dev, gpu.MeshDesc{
		Label:    s.Name() + "-triangles",
		Vertices: s.TriangleData(),
		Stride:   stride,
		Attribs:  attribs,
		Topology: gpu.Triangles,
		Dynamic:  true,
	}); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", s.Name(), err)
	}
	if m.edges, err = sr.pool.Mesh(sr.dev, gpu.MeshDesc{
		Label:    s.Name() + "-edges",
		Vertices: s.EdgeData(edgeColor),
		Stride:   surface.EdgeStride,
		Attribs:  lineAttribs,
		Topology: gpu.Lines,
		Dynamic:  true,
	}); err != nil {
		return nil, fmt.Errorf("uploading %s edges: %w", s.Name(), err)
	}
	if tex := s.Texture(); tex != nil {
		if m.texture, err = sr.pool.Texture(sr.dev, gpu.TextureDesc{
			Label:  s.Name() + "-texture",
			Width:  tex.Width,
			Height: tex.Height,
			Format: gpu.FormatRGBA32F,
			Filter: gpu.FilterLinear,
		}, tex.Pixels); err != nil {
			return nil, fmt.Errorf("uploading %s texture: %w", s.Name(), err)
		}
	}

	sr.meshes[s] = m
	return m, nil
}

// frame holds per-frame inputs of Render.
type frame struct {
	width, height int32
	viewProj      math.Mat4
	background    [4]float32
	lightDir      math.Vec3
	ambient       [3]float32
	edgeColor     [4]float32
	gridBox       *math.AABB
	gridBoxColor  [4]float32
}

// Render clears the back buffer and draws every surface: triangles first,
// then edges when enabled. The optional grid box wireframe comes last.
func (sr *SurfaceRenderer) Render(surfaces []*surface.Surface, f frame) error {
	// Uploads happen before the pass so a failure leaves no open pass.
	uploaded := make([]*surfaceMeshes, len(surfaces))
	for i, s := range surfaces {
		m, err := sr.upload(s, f.edgeColor)
		if err != nil {
			return err
		}
		uploaded[i] = m
	}
	if f.gridBox != nil {
		if err := sr.dev.UpdateMesh(sr.gridBox, debug.BoxWireframeColored(*f.gridBox, 0, f.gridBoxColor)); err != nil {
			return fmt.Errorf("updating grid wireframe: %w", err)
		}
	}

	bg := f.background
	sr.dev.BeginPass(gpu.Pass{
		Name:     PassSurfaces,
		Viewport: gpu.Full(f.width, f.height),
		Clear:    gpu.Clear{Color: &bg, Depth: gpu.ClearDepth(1)},
	})
	defer sr.dev.EndPass()

	solid := gpu.State{Cull: gpu.CullBack, Depth: gpu.DepthLess, DepthWrite: true}
	for i, s := range surfaces {
		m := uploaded[i]
		call := gpu.DrawCall{
			Label:   s.Name(),
			Program: sr.surfaceProg,
			Mesh:    m.triangles,
			State:   solid,
			Uniforms: []gpu.Uniform{
				{Name: "uViewProj", Value: f.viewProj},
				{Name: "uModel", Value: s.Model()},
				{Name: "uLightDir", Value: f.lightDir},
				{Name: "uAmbient", Value: f.ambient},
				{Name: "uTextured", Value: boolInt(m.texture != nil)},
			},
		}
		if m.texture != nil {
			call.Textures = []gpu.Binding{{Name: "uTexture", Unit: 0, Texture: m.texture}}
		}
		sr.dev.Draw(call)
	}

	lines := gpu.State{Depth: gpu.DepthLess}
	for i, s := range surfaces {
		if !s.DrawEdges() {
			continue
		}
		sr.dev.Draw(gpu.DrawCall{
			Label:   s.Name() + "-edges",
			Program: sr.lineProg,
			Mesh:    uploaded[i].edges,
			State:   lines,
			Uniforms: []gpu.Uniform{
				{Name: "uViewProj", Value: f.viewProj},
				{Name: "uModel", Value: s.Model()},
			},
		})
	}

	if f.gridBox != nil {
		sr.dev.Draw(gpu.DrawCall{
			Label:   "grid-wireframe",
			Program: sr.lineProg,
			Mesh:    sr.gridBox,
			State:   lines,
			Uniforms: []gpu.Uniform{
				{Name: "uViewProj", Value: f.viewProj},
				{Name: "uModel", Value: math.Identity()},
			},
		})
	}
	return nil
}

// Release frees every GPU resource.
func (sr *SurfaceRenderer) Release() {
	sr.pool.Release()
	sr.meshes = make(map[*surface.Surface]*surfaceMeshes)
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

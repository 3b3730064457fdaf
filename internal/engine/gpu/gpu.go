// Package gpu defines the graphics device interface used by the renderers.
//
// Renderers never call the graphics API directly. They receive a Device in
// their constructor, allocate resources through it and submit passes in the
// order the frame requires. The device executes passes in submission order.
package gpu

import "errors"

// ErrResourceCreation is wrapped by backends when an allocation fails.
var ErrResourceCreation = errors.New("gpu resource creation failed")

// Format is the texel format of a texture or render target.
type Format int

const (
	FormatRGBA8 Format = iota
	FormatRGBA16F
	FormatRGBA32F
	FormatR32F
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBA16F:
		return "RGBA16F"
	case FormatRGBA32F:
		return "RGBA32F"
	case FormatR32F:
		return "R32F"
	default:
		return "unknown"
	}
}

// Components returns the number of channels per texel.
func (f Format) Components() int {
	if f == FormatR32F {
		return 1
	}
	return 4
}

// Filter selects texture sampling.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

// TextureDesc describes a sampled texture. Depth > 0 makes it a 3-D texture.
type TextureDesc struct {
	Label  string
	Width  int32
	Height int32
	Depth  int32
	Format Format
	Filter Filter
}

// TargetDesc describes a 2-D render target.
type TargetDesc struct {
	Label       string
	Width       int32
	Height      int32
	Format      Format
	Filter      Filter
	DepthBuffer bool
}

// Resource is anything allocated by a Device.
type Resource interface {
	Release()
}

// Texture is a sampled texture.
type Texture interface {
	Resource
	Size() (width, height, depth int32)
}

// Target is a render target whose color attachment can be sampled later in
// the same frame.
type Target interface {
	Resource
	Texture() Texture
	Size() (width, height int32)
}

// Mesh is a vertex buffer with an optional index buffer.
type Mesh interface {
	Resource
}

// Program is a linked shader program.
type Program interface {
	Resource
}

// Topology is the primitive type of a mesh.
type Topology int

const (
	Triangles Topology = iota
	Lines
)

// Attrib is one interleaved float vertex attribute.
type Attrib struct {
	Location   uint32
	Components int32
	Offset     int // in floats
}

// MeshDesc describes mesh geometry. Stride and offsets are in floats.
type MeshDesc struct {
	Label    string
	Vertices []float32
	Indices  []uint32
	Stride   int
	Attribs  []Attrib
	Topology Topology
	Dynamic  bool
}

// CullMode selects which faces are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// DepthFunc selects the depth comparison.
type DepthFunc int

const (
	DepthDisabled DepthFunc = iota
	DepthLess
	DepthGreater
)

// BlendMode selects color blending.
type BlendMode int

const (
	BlendNone BlendMode = iota
	// BlendPremultiplied composites premultiplied color over the target.
	BlendPremultiplied
	BlendAdditive
)

// State is the fixed-function state of a draw.
type State struct {
	Cull       CullMode
	Depth      DepthFunc
	DepthWrite bool
	Blend      BlendMode
}

// Uniform is a named shader constant. Value must be one of float32, int32,
// [2]float32, [3]float32, [4]float32, math.Vec3 or math.Mat4.
type Uniform struct {
	Name  string
	Value any
}

// Binding binds a texture to a sampler uniform on the given unit.
type Binding struct {
	Name    string
	Unit    uint32
	Texture Texture
}

// DrawCall is one draw submitted inside a pass.
type DrawCall struct {
	Label    string
	Program  Program
	Mesh     Mesh
	State    State
	Uniforms []Uniform
	Textures []Binding
}

// Clear holds the clear values applied when a pass begins. Nil fields skip
// clearing that attachment.
type Clear struct {
	Color *[4]float32
	Depth *float32
}

// Pass describes a render pass. A nil Target renders to the back buffer.
type Pass struct {
	Name     string
	Target   Target
	Viewport [4]int32
	Clear    Clear
}

// Device allocates resources and executes passes in submission order.
type Device interface {
	MaxTextureSize() int32
	NewTexture(desc TextureDesc, data []float32) (Texture, error)
	UpdateTexture(tex Texture, data []float32) error
	NewTarget(desc TargetDesc) (Target, error)
	NewMesh(desc MeshDesc) (Mesh, error)
	UpdateMesh(mesh Mesh, vertices []float32) error
	NewProgram(label, vertexSrc, fragmentSrc string) (Program, error)

	BeginPass(pass Pass)
	Draw(call DrawCall)
	EndPass()
}

// ClearColor returns a Clear value for the given color.
func ClearColor(r, g, b, a float32) *[4]float32 {
	return &[4]float32{r, g, b, a}
}

// ClearDepth returns a Clear value for the given depth.
func ClearDepth(d float32) *float32 {
	return &d
}

// Full returns the viewport covering w x h.
func Full(w, h int32) [4]int32 {
	return [4]int32{0, 0, w, h}
}

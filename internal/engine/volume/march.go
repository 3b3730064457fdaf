package volume

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/voldiff/pkg/math"
)

// Sampler returns the density at a grid coordinate in [0,1]^3.
type Sampler interface {
	Sample(p math.Vec3) float32
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(p math.Vec3) float32

func (f SamplerFunc) Sample(p math.Vec3) float32 { return f(p) }

// RaySample is one texel of ray data: the grid coordinate where the ray
// enters or leaves the grid and the view distance of that point. A zero
// distance means the ray missed.
type RaySample struct {
	Coord    math.Vec3
	Distance float32
}

// Hit reports whether the sample holds a surface point.
func (s RaySample) Hit() bool {
	return s.Distance > 0
}

// MarchResult is the outcome of marching one ray.
type MarchResult struct {
	// Color is straight (non-premultiplied) RGBA.
	Color [4]float32
	Steps int
}

// Marcher integrates density along rays. The ray cast fragment shader runs
// the same arithmetic.
type Marcher struct {
	stepCount  int
	maxSteps   int
	epsilon    float32
	colorMul   float32
	alphaMul   float32
	zFar       float32
	transferFn lut
}

// NewMarcher creates a marcher for the given parameters. zFar caps the exit
// distance; zero disables the cap.
func NewMarcher(p Params, zFar float32) *Marcher {
	m := &Marcher{
		stepCount:  p.StepCount,
		maxSteps:   p.MaxSteps,
		epsilon:    p.OpacityEpsilon,
		colorMul:   p.ColorMultiplier,
		alphaMul:   p.AlphaMultiplier,
		zFar:       zFar,
		transferFn: lut(p.ramp().Bake()),
	}
	if m.stepCount < 1 {
		m.stepCount = 1
	}
	if m.maxSteps < 1 {
		m.maxSteps = 1
	}
	return m
}

// March composites the density between front and back front to back.
// eyeOnGrid is the eye position in grid coordinates; it is the ray start
// when the front sample is missing and the back sample is present.
// maxDim is the largest world extent of the grid.
func (m *Marcher) March(front, back RaySample, eyeOnGrid math.Vec3, maxDim float32, src Sampler) MarchResult {
	if !back.Hit() || maxDim <= 0 {
		return MarchResult{}
	}

	start := front
	if !front.Hit() {
		start = RaySample{Coord: eyeOnGrid}
	}

	length := back.Distance - start.Distance
	if length <= 0 {
		return MarchResult{}
	}
	endCoord := back.Coord
	if m.zFar > 0 && back.Distance > m.zFar {
		if m.zFar <= start.Distance {
			return MarchResult{}
		}
		capped := m.zFar - start.Distance
		endCoord = start.Coord.Lerp(back.Coord, capped/length)
		length = capped
	}

	step := maxDim / float32(m.stepCount)
	n := int(math32.Ceil(length / step))
	if n > m.maxSteps {
		n = m.maxSteps
	}
	if n < 1 {
		n = 1
	}
	delta := endCoord.Sub(start.Coord).Scale(1 / float32(n))

	var c math.Vec3
	var a float32
	var res MarchResult
	for i := 0; i < n; i++ {
		res.Steps++
		p := start.Coord.Add(delta.Scale(float32(i) + 0.5))
		d := src.Sample(p)
		tf := m.transferFn.lookup(d)
		sa := clamp01(d * tf[3] * m.alphaMul)
		w := (1 - a) * sa
		c = c.Add(math.Vec3{X: tf[0], Y: tf[1], Z: tf[2]}.Scale(w * m.colorMul))
		a += w
		if a >= 1-m.epsilon {
			break
		}
	}

	a = math32.Min(a, 1)
	if a <= 0 {
		return res
	}
	res.Color = [4]float32{c.X / a, c.Y / a, c.Z / a, a}
	return res
}

package volume

import "sort"

// RampSize is the number of entries in a baked transfer ramp.
const RampSize = 256

// Stop is one control point of a transfer ramp.
type Stop struct {
	Pos   float32
	Color [4]float32
}

// Ramp maps density to color and opacity by linear interpolation between
// stops. Density outside the first and last stop clamps.
type Ramp []Stop

// SmokeRamp is the default ramp: transparent at zero, cool blue at low
// density and warm white when dense.
var SmokeRamp = Ramp{
	{Pos: 0, Color: [4]float32{0, 0, 0, 0}},
	{Pos: 0.1, Color: [4]float32{0.15, 0.25, 0.6, 0.6}},
	{Pos: 0.4, Color: [4]float32{0.6, 0.5, 0.9, 0.9}},
	{Pos: 1, Color: [4]float32{1, 0.95, 0.85, 1}},
}

// Eval evaluates the ramp at d.
func (r Ramp) Eval(d float32) [4]float32 {
	if len(r) == 0 {
		return [4]float32{}
	}
	if d <= r[0].Pos {
		return r[0].Color
	}
	last := r[len(r)-1]
	if d >= last.Pos {
		return last.Color
	}
	i := sort.Search(len(r), func(i int) bool { return r[i].Pos > d })
	a, b := r[i-1], r[i]
	t := (d - a.Pos) / (b.Pos - a.Pos)
	return lerp4(a.Color, b.Color, t)
}

// Bake samples the ramp at RampSize evenly spaced densities in [0,1] and
// returns RGBA floats ready for a 1-row texture.
func (r Ramp) Bake() []float32 {
	out := make([]float32, RampSize*4)
	for i := 0; i < RampSize; i++ {
		c := r.Eval(float32(i) / float32(RampSize-1))
		copy(out[i*4:], c[:])
	}
	return out
}

// lut is a baked ramp looked up the way a linearly filtered texture is
// sampled at u = (d*(n-1)+0.5)/n.
type lut []float32

func (l lut) lookup(d float32) [4]float32 {
	n := len(l) / 4
	if n == 0 {
		return [4]float32{}
	}
	x := clamp01(d) * float32(n-1)
	i := int(x)
	if i >= n-1 {
		return [4]float32{l[(n-1)*4], l[(n-1)*4+1], l[(n-1)*4+2], l[(n-1)*4+3]}
	}
	t := x - float32(i)
	a := [4]float32{l[i*4], l[i*4+1], l[i*4+2], l[i*4+3]}
	b := [4]float32{l[i*4+4], l[i*4+5], l[i*4+6], l[i*4+7]}
	return lerp4(a, b, t)
}

func lerp4(a, b [4]float32, t float32) [4]float32 {
	return [4]float32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
		a[3] + (b[3]-a[3])*t,
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

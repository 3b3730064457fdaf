package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/voldiff/pkg/math"
)

func constant(d float32) Sampler {
	return SamplerFunc(func(math.Vec3) float32 { return d })
}

func marchParams() Params {
	p := DefaultParams()
	p.StepCount = 1000
	p.MaxSteps = 5000
	p.OpacityEpsilon = 0.01
	p.AlphaMultiplier = 0.3
	p.ColorMultiplier = 2
	return p
}

var (
	entry = RaySample{Coord: math.V3(0.5, 0.5, 0), Distance: 10}
	exit  = RaySample{Coord: math.V3(0.5, 0.5, 1), Distance: 11}
)

func TestMarchMissingExitIsTransparent(t *testing.T) {
	m := NewMarcher(marchParams(), 0)

	res := m.March(entry, RaySample{}, math.Vec3{}, 1, constant(1))
	assert.Equal(t, [4]float32{}, res.Color)
	assert.Zero(t, res.Steps)

	// Both missing
	res = m.March(RaySample{}, RaySample{}, math.Vec3{}, 1, constant(1))
	assert.Equal(t, [4]float32{}, res.Color)
}

func TestMarchInvertedRayIsTransparent(t *testing.T) {
	m := NewMarcher(marchParams(), 0)

	back := exit
	back.Distance = entry.Distance
	res := m.March(entry, back, math.Vec3{}, 1, constant(1))
	assert.Equal(t, [4]float32{}, res.Color)
}

func TestMarchZeroDensityIsTransparent(t *testing.T) {
	m := NewMarcher(marchParams(), 0)

	res := m.March(entry, exit, math.Vec3{}, 1, constant(0))
	assert.Equal(t, [4]float32{}, res.Color)
	assert.Equal(t, 1000, res.Steps)
}

func TestMarchDegenerateGridIsTransparent(t *testing.T) {
	m := NewMarcher(marchParams(), 0)

	res := m.March(entry, exit, math.Vec3{}, 0, constant(1))
	assert.Equal(t, [4]float32{}, res.Color)
}

func TestMarchEarlyTerminationBound(t *testing.T) {
	p := marchParams()
	m := NewMarcher(p, 0)

	// Each step adds 30% of the remaining transparency: 1-0.7^k >= 0.99 at k=13
	res := m.March(entry, exit, math.Vec3{}, 1, constant(1))
	assert.Equal(t, 13, res.Steps)
	assert.GreaterOrEqual(t, res.Color[3], 1-p.OpacityEpsilon)
	assert.LessOrEqual(t, res.Color[3], float32(1))

	// Straight color of a uniform medium is the transfer color times the multiplier
	tf := SmokeRamp.Eval(1)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, tf[i]*p.ColorMultiplier, res.Color[i], 1e-4)
	}
}

func TestMarchRespectsMaxSteps(t *testing.T) {
	p := marchParams()
	p.MaxSteps = 10
	m := NewMarcher(p, 0)

	res := m.March(entry, exit, math.Vec3{}, 1, constant(0.05))
	assert.Equal(t, 10, res.Steps)
}

func TestMarchStepLengthFollowsMaxDim(t *testing.T) {
	p := marchParams()
	p.StepCount = 8
	m := NewMarcher(p, 0)

	// The ray is one world unit long and the grid's largest side is 4, so
	// each step covers half a unit.
	res := m.March(entry, exit, math.Vec3{}, 4, constant(0))
	assert.Equal(t, 2, res.Steps)
}

func TestMarchFromEyeInsideGrid(t *testing.T) {
	m := NewMarcher(marchParams(), 0)
	eye := math.V3(0.5, 0.5, 0.5)

	var seen []math.Vec3
	src := SamplerFunc(func(p math.Vec3) float32 {
		seen = append(seen, p)
		return 0.5
	})

	res := m.March(RaySample{}, RaySample{Coord: math.V3(0.5, 0.5, 1), Distance: 0.5}, eye, 1, src)
	assert.Greater(t, res.Color[3], float32(0))
	if assert.NotEmpty(t, seen) {
		// Samples start just past the eye and move towards the exit
		assert.InDelta(t, 0.5, seen[0].Z, 0.01)
		assert.Greater(t, seen[len(seen)-1].Z, seen[0].Z)
	}
}

func TestMarchFarPlaneCapsRay(t *testing.T) {
	p := marchParams()
	far := NewMarcher(p, 10.5)
	full := NewMarcher(p, 0)

	capped := far.March(entry, exit, math.Vec3{}, 1, constant(0))
	uncapped := full.March(entry, exit, math.Vec3{}, 1, constant(0))
	assert.Equal(t, 500, capped.Steps)
	assert.Equal(t, 1000, uncapped.Steps)

	// Entry beyond the far plane leaves nothing to march
	res := NewMarcher(p, 5).March(entry, exit, math.Vec3{}, 1, constant(1))
	assert.Equal(t, [4]float32{}, res.Color)
}

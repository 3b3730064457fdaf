package volume

import (
	"github.com/Faultbox/voldiff/internal/config"
	"github.com/Faultbox/voldiff/pkg/math"
)

// Params holds the tunables of the volume pipeline.
type Params struct {
	// GridDims is the expected size of the density texture.
	GridDims [3]int32

	RayDataScale   float32
	StepCount      int
	MaxSteps       int
	OpacityEpsilon float32

	ColorMultiplier float32
	AlphaMultiplier float32
	Ramp            Ramp

	Edges         bool
	EdgeColor     [4]float32
	EdgeThreshold float32

	Glow             bool
	GlowContribution float32

	FinalIntensityScale float32
	FinalAlphaScale     float32
}

// ParamsFromConfig converts the volume config section.
func ParamsFromConfig(c config.VolumeConfig) Params {
	return Params{
		GridDims:            [3]int32{int32(c.GridWidth), int32(c.GridHeight), int32(c.GridDepth)},
		RayDataScale:        c.RayDataScale,
		StepCount:           c.StepCount,
		MaxSteps:            c.MaxSteps,
		OpacityEpsilon:      c.OpacityEpsilon,
		ColorMultiplier:     c.ColorMultiplier,
		AlphaMultiplier:     c.AlphaMultiplier,
		Ramp:                SmokeRamp,
		Edges:               c.Edges,
		EdgeColor:           c.EdgeColor,
		EdgeThreshold:       c.EdgeThreshold,
		Glow:                c.Glow,
		GlowContribution:    c.GlowContribution,
		FinalIntensityScale: c.FinalIntensityScale,
		FinalAlphaScale:     c.FinalAlphaScale,
	}
}

// DefaultParams returns the parameters of the default config.
func DefaultParams() Params {
	return ParamsFromConfig(config.Default().Volume)
}

func (p Params) ramp() Ramp {
	if len(p.Ramp) == 0 {
		return SmokeRamp
	}
	return p.Ramp
}

// View is the camera state the pipeline needs for one frame.
type View struct {
	ViewProj math.Mat4
	Eye      math.Vec3
	ZNear    float32
	ZFar     float32
}

// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by Validate for every rejected value.
var ErrInvalid = errors.New("invalid config")

// Config holds all viewer settings.
type Config struct {
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Volume    VolumeConfig    `yaml:"volume"`
	Density   DensityConfig   `yaml:"density"`
	Controls  ControlsConfig  `yaml:"controls"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// GraphicsConfig holds display and projection settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FOV        float32 `yaml:"fov"` // vertical, degrees
	ZNear      float32 `yaml:"znear"`
	ZFar       float32 `yaml:"zfar"`
}

// VolumeConfig holds the ray-casting and compositing parameters.
type VolumeConfig struct {
	GridWidth  int `yaml:"grid_width"`
	GridHeight int `yaml:"grid_height"`
	GridDepth  int `yaml:"grid_depth"`

	RayDataScale   float32 `yaml:"ray_data_scale"`
	StepCount      int     `yaml:"step_count"`
	MaxSteps       int     `yaml:"max_steps"`
	OpacityEpsilon float32 `yaml:"opacity_epsilon"`

	Edges         bool       `yaml:"edges"`
	EdgeColor     [4]float32 `yaml:"edge_color"`
	EdgeThreshold float32    `yaml:"edge_threshold"`

	Glow             bool    `yaml:"glow"`
	GlowContribution float32 `yaml:"glow_contribution"`

	FinalIntensityScale float32 `yaml:"final_intensity_scale"`
	FinalAlphaScale     float32 `yaml:"final_alpha_scale"`
	ColorMultiplier     float32 `yaml:"color_multiplier"`
	AlphaMultiplier     float32 `yaml:"alpha_multiplier"`
}

// DensityConfig holds the demo density source settings.
type DensityConfig struct {
	Seed          int64   `yaml:"seed"`
	NoiseScale    float32 `yaml:"noise_scale"`
	DiffusionRate float32 `yaml:"diffusion_rate"`
	Decay         float32 `yaml:"decay"`
}

// ControlsConfig holds mouse interaction rates.
type ControlsConfig struct {
	MouseSpeed     float32 `yaml:"mouse_speed"`
	WheelScaleRate float32 `yaml:"wheel_scale_rate"`
	WheelMoveRate  float32 `yaml:"wheel_move_rate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// TelemetryConfig holds the per-frame CSV trace settings. An empty path
// disables tracing.
type TelemetryConfig struct {
	TraceFile string `yaml:"trace_file"`
	Interval  int    `yaml:"interval"` // frames between rows
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:  800,
			Height: 600,
			VSync:  true,
			FOV:    45,
			ZNear:  0.05,
			ZFar:   1000,
		},
		Volume: VolumeConfig{
			GridWidth:           64,
			GridHeight:          64,
			GridDepth:           64,
			RayDataScale:        0.5,
			StepCount:           128,
			MaxSteps:            512,
			OpacityEpsilon:      0.01,
			Edges:               true,
			EdgeColor:           [4]float32{0.9, 0.9, 1, 1},
			EdgeThreshold:       0.2,
			Glow:                false,
			GlowContribution:    0.81,
			FinalIntensityScale: 28,
			FinalAlphaScale:     0.95,
			ColorMultiplier:     2,
			AlphaMultiplier:     0.05,
		},
		Density: DensityConfig{
			Seed:          1,
			NoiseScale:    4,
			DiffusionRate: 0.1,
			Decay:         0.002,
		},
		Controls: ControlsConfig{
			MouseSpeed:     8,
			WheelScaleRate: 100,
			WheelMoveRate:  100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Interval: 1,
		},
	}
}

// Validate rejects values the renderer cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Graphics.Width <= 0 || c.Graphics.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Graphics.Width, c.Graphics.Height)
	case c.Graphics.FOV <= 0 || c.Graphics.FOV >= 180:
		return fmt.Errorf("%w: fov %g", ErrInvalid, c.Graphics.FOV)
	case c.Graphics.ZNear <= 0 || c.Graphics.ZFar <= c.Graphics.ZNear:
		return fmt.Errorf("%w: depth range [%g, %g]", ErrInvalid, c.Graphics.ZNear, c.Graphics.ZFar)
	case c.Volume.GridWidth <= 0 || c.Volume.GridHeight <= 0 || c.Volume.GridDepth <= 0:
		return fmt.Errorf("%w: grid %dx%dx%d", ErrInvalid, c.Volume.GridWidth, c.Volume.GridHeight, c.Volume.GridDepth)
	case !(c.Volume.RayDataScale > 0 && c.Volume.RayDataScale <= 1):
		return fmt.Errorf("%w: ray data scale %g", ErrInvalid, c.Volume.RayDataScale)
	case c.Volume.StepCount <= 0 || c.Volume.MaxSteps <= 0:
		return fmt.Errorf("%w: step count %d, max steps %d", ErrInvalid, c.Volume.StepCount, c.Volume.MaxSteps)
	case c.Volume.OpacityEpsilon < 0 || c.Volume.OpacityEpsilon >= 1:
		return fmt.Errorf("%w: opacity epsilon %g", ErrInvalid, c.Volume.OpacityEpsilon)
	case c.Density.DiffusionRate < 0 || c.Density.DiffusionRate > 1.0/6:
		// explicit diffusion is unstable above 1/6 on a 6-neighbour stencil
		return fmt.Errorf("%w: diffusion rate %g", ErrInvalid, c.Density.DiffusionRate)
	case c.Telemetry.Interval < 0:
		return fmt.Errorf("%w: telemetry interval %d", ErrInvalid, c.Telemetry.Interval)
	}
	return nil
}

// Package main renders one frame of the volume with the software pipeline
// and writes it as PNG. No window or GPU is needed.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/voldiff/internal/config"
	"github.com/Faultbox/voldiff/internal/engine/debug"
	"github.com/Faultbox/voldiff/internal/engine/density"
	"github.com/Faultbox/voldiff/internal/engine/volume"
	"github.com/Faultbox/voldiff/internal/logger"
	"github.com/Faultbox/voldiff/internal/viewer"
)

var (
	flagOut      = flag.String("out", "volrender.png", "Output PNG path")
	flagSimSteps = flag.Int("sim-steps", 0, "Diffusion steps before rendering")
	flagSurface  = flag.Int("surface", 0, "Index of the demo surface bounding the volume")
	flagYaw      = flag.Float64("yaw", 0, "Camera yaw offset in degrees")
	flagPitch    = flag.Float64("pitch", 0, "Camera pitch in degrees")
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := render(cfg); err != nil {
		logger.Error("render failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func render(cfg *config.Config) error {
	dims := [3]int{cfg.Volume.GridWidth, cfg.Volume.GridHeight, cfg.Volume.GridDepth}
	field, err := density.New(dims, cfg.Density)
	if err != nil {
		return fmt.Errorf("creating density field: %w", err)
	}
	for range *flagSimSteps {
		field.Step()
	}

	surfaces, err := viewer.DemoSurfaces()
	if err != nil {
		return err
	}
	idx := ((*flagSurface % len(surfaces)) + len(surfaces)) % len(surfaces)
	bounds := surfaces[idx].WorldBounds()

	cam := viewer.NewCamera(cfg.Graphics)
	cam.Center = bounds.Center()
	cam.RotationY += float32(*flagYaw) * math32.Pi / 180
	cam.RotationX = float32(*flagPitch) * math32.Pi / 180

	w, h := int32(cfg.Graphics.Width), int32(cfg.Graphics.Height)
	view := viewer.ViewFrom(cam, w, h)

	sw := volume.NewSoftware(volume.ParamsFromConfig(cfg.Volume))
	frame, err := sw.Render(field, bounds.Min, bounds.Max, view, w, h, color.RGBA{13, 13, 20, 255})
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	if err := debug.SavePNG(*flagOut, frame.Image); err != nil {
		return err
	}

	logger.Info("frame written",
		zap.String("path", *flagOut),
		zap.String("surface", surfaces[idx].Name()),
		zap.Int32("width", w),
		zap.Int32("height", h),
		zap.Int32("rayDataWidth", frame.Stats.RayDataWidth),
		zap.Int32("rayDataHeight", frame.Stats.RayDataHeight),
		zap.Float32("densityMass", field.Mass()))
	return nil
}

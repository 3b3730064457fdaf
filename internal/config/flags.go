package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagScale      = flag.Float64("raydata-scale", 0, "Ray data downscale factor")
	flagSteps      = flag.Int("steps", 0, "Ray march step count across the grid")
	flagGrid       = flag.Int("grid", 0, "Cubic density grid resolution")
	flagNoEdges    = flag.Bool("no-edges", false, "Disable the edge overlay")
	flagGlow       = flag.Bool("glow", false, "Enable the glow post-process")
	flagTrace      = flag.String("trace", "", "Write per-frame telemetry CSV to this path")
	flagSave       = flag.Bool("save-config", false, "Write the effective config to the user config directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSave
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagScale > 0 {
		cfg.Volume.RayDataScale = float32(*flagScale)
	}
	if *flagSteps > 0 {
		cfg.Volume.StepCount = *flagSteps
	}
	if *flagGrid > 0 {
		cfg.Volume.GridWidth = *flagGrid
		cfg.Volume.GridHeight = *flagGrid
		cfg.Volume.GridDepth = *flagGrid
	}
	if *flagNoEdges {
		cfg.Volume.Edges = false
	}
	if *flagGlow {
		cfg.Volume.Glow = true
	}
	if *flagTrace != "" {
		cfg.Telemetry.TraceFile = *flagTrace
	}
}

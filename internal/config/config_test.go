package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Width != 800 {
		t.Errorf("expected width 800, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 600 {
		t.Errorf("expected height 600, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Graphics.ZNear != 0.05 || cfg.Graphics.ZFar != 1000 {
		t.Errorf("expected depth range [0.05, 1000], got [%f, %f]", cfg.Graphics.ZNear, cfg.Graphics.ZFar)
	}

	// Test volume defaults
	if cfg.Volume.RayDataScale != 0.5 {
		t.Errorf("expected ray data scale 0.5, got %f", cfg.Volume.RayDataScale)
	}
	if cfg.Volume.GlowContribution != 0.81 {
		t.Errorf("expected glow contribution 0.81, got %f", cfg.Volume.GlowContribution)
	}
	if cfg.Volume.GridWidth != 64 || cfg.Volume.GridHeight != 64 || cfg.Volume.GridDepth != 64 {
		t.Errorf("expected 64^3 grid, got %dx%dx%d", cfg.Volume.GridWidth, cfg.Volume.GridHeight, cfg.Volume.GridDepth)
	}

	// Test controls defaults
	if cfg.Controls.MouseSpeed != 8 {
		t.Errorf("expected mouse speed 8, got %f", cfg.Controls.MouseSpeed)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Telemetry.TraceFile != "" {
		t.Errorf("expected tracing disabled, got %s", cfg.Telemetry.TraceFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

volume:
  grid_width: 32
  grid_height: 48
  grid_depth: 16
  ray_data_scale: 0.25
  step_count: 64
  edges: false
  edge_color: [1, 0, 0, 1]
  glow_contribution: 0.5

density:
  seed: 42

logging:
  level: "debug"
  log_file: "viewer.log"

telemetry:
  trace_file: "frames.csv"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Graphics.ZFar != 1000 {
		t.Errorf("expected unset zfar to keep default, got %f", cfg.Graphics.ZFar)
	}

	if cfg.Volume.GridWidth != 32 || cfg.Volume.GridHeight != 48 || cfg.Volume.GridDepth != 16 {
		t.Errorf("unexpected grid %dx%dx%d", cfg.Volume.GridWidth, cfg.Volume.GridHeight, cfg.Volume.GridDepth)
	}
	if cfg.Volume.RayDataScale != 0.25 {
		t.Errorf("expected ray data scale 0.25, got %f", cfg.Volume.RayDataScale)
	}
	if cfg.Volume.Edges {
		t.Error("expected edges to be disabled")
	}
	if cfg.Volume.EdgeColor != [4]float32{1, 0, 0, 1} {
		t.Errorf("unexpected edge color %v", cfg.Volume.EdgeColor)
	}
	if cfg.Volume.FinalIntensityScale != 28 {
		t.Errorf("expected unset intensity scale to keep default, got %f", cfg.Volume.FinalIntensityScale)
	}

	if cfg.Density.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Density.Seed)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
	if cfg.Telemetry.TraceFile != "frames.csv" {
		t.Errorf("expected trace file 'frames.csv', got %s", cfg.Telemetry.TraceFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }},
		{"fov too wide", func(c *Config) { c.Graphics.FOV = 180 }},
		{"far before near", func(c *Config) { c.Graphics.ZFar = 0.01 }},
		{"empty grid axis", func(c *Config) { c.Volume.GridDepth = 0 }},
		{"zero ray data scale", func(c *Config) { c.Volume.RayDataScale = 0 }},
		{"ray data scale above one", func(c *Config) { c.Volume.RayDataScale = 1e9 }},
		{"no steps", func(c *Config) { c.Volume.StepCount = 0 }},
		{"epsilon of one", func(c *Config) { c.Volume.OpacityEpsilon = 1 }},
		{"unstable diffusion", func(c *Config) { c.Density.DiffusionRate = 0.5 }},
		{"negative telemetry interval", func(c *Config) { c.Telemetry.Interval = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// Point the user config dir somewhere empty
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "grid flag sets all axes",
			setup: func() { *flagGrid = 100 },
			verify: func(t *testing.T, cfg *Config) {
				v := cfg.Volume
				if v.GridWidth != 100 || v.GridHeight != 100 || v.GridDepth != 100 {
					t.Errorf("expected 100^3 grid, got %dx%dx%d", v.GridWidth, v.GridHeight, v.GridDepth)
				}
			},
			teardown: func() { *flagGrid = 0 },
		},
		{
			name: "feature toggles",
			setup: func() {
				*flagNoEdges = true
				*flagGlow = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Volume.Edges {
					t.Error("expected edges disabled")
				}
				if !cfg.Volume.Glow {
					t.Error("expected glow enabled")
				}
			},
			teardown: func() {
				*flagNoEdges = false
				*flagGlow = false
			},
		},
		{
			name:  "raydata scale flag",
			setup: func() { *flagScale = 0.25 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Volume.RayDataScale != 0.25 {
					t.Errorf("expected scale 0.25, got %f", cfg.Volume.RayDataScale)
				}
			},
			teardown: func() { *flagScale = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("volume:\n  step_count: -4\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Volume.StepCount = 77
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Volume.StepCount != 77 {
		t.Errorf("expected step count 77, got %d", loaded.Volume.StepCount)
	}
}

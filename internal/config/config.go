// Package config handles viewer and generator configuration.
package config

import (
	"github.com/Faultbox/sculpt/internal/creature"
	"github.com/Faultbox/sculpt/internal/engine/lighting"
	"github.com/Faultbox/sculpt/pkg/math"
)

// Config holds all settings.
type Config struct {
	Window   WindowConfig    `yaml:"window"`
	Render   RenderConfig    `yaml:"render"`
	Creature creature.Params `yaml:"creature"`
	Export   ExportConfig    `yaml:"export"`
	Logging  LoggingConfig   `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Samples    int    `yaml:"samples"`
}

// RenderConfig holds renderer and camera settings.
type RenderConfig struct {
	ClearColor    math.Vec3      `yaml:"clear_color"`
	Light         lighting.Light `yaml:"light"`
	Wireframe     bool           `yaml:"wireframe"`
	AutoOrbit     float32        `yaml:"auto_orbit"` // radians per second
	ScreenshotDir string         `yaml:"screenshot_dir"`
	ShowBounds    bool           `yaml:"show_bounds"`
}

// ExportConfig holds headless export settings.
type ExportConfig struct {
	Output string `yaml:"output"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:   "sculpt",
			Width:   1280,
			Height:  720,
			VSync:   true,
			Samples: 4,
		},
		Render: RenderConfig{
			ClearColor:    math.Vec3{X: 0.1, Y: 0.1, Z: 0.15},
			Light:         lighting.DefaultLight(),
			AutoOrbit:     0.2,
			ScreenshotDir: "screenshots",
		},
		Creature: creature.DefaultParams(),
		Export: ExportConfig{
			Output: "creature.stl",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

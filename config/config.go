package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExportConfig holds the defaults used for video export when the user does
// not override them on the command line.
type ExportConfig struct {
	// Output is the default output file path.
	Output string `yaml:"output"`

	// Width is the output video width in pixels.
	Width int `yaml:"width"`

	// Height is the output video height in pixels.
	Height int `yaml:"height"`

	// FPS is the output video frame rate.
	FPS int `yaml:"fps"`

	// Codec is the ffmpeg video codec used for encoding.
	Codec string `yaml:"codec"`
}

// Config holds the viewer settings loaded from a YAML file.
type Config struct {
	// Title is the window title.
	Title string `yaml:"title"`

	// Width is the initial window width in pixels.
	Width int `yaml:"width"`

	// Height is the initial window height in pixels.
	Height int `yaml:"height"`

	// Sensitivity scales cursor movement into look angles, in degrees per
	// pixel.
	Sensitivity float32 `yaml:"sensitivity"`

	// ZoomSpeed scales scroll wheel steps into field of view changes, in
	// degrees per step.
	ZoomSpeed float32 `yaml:"zoom_speed"`

	// NudgeStep is the per-frame look adjustment for held arrow-style keys,
	// in degrees.
	NudgeStep float32 `yaml:"nudge_step"`

	// VSync paces presentation to the display refresh rate.
	VSync bool `yaml:"vsync"`

	// Profile enables periodic FPS and memory logging.
	Profile bool `yaml:"profile"`

	// Export holds video export defaults.
	Export ExportConfig `yaml:"export"`
}

// Default returns the built-in configuration.
//
// Returns:
//   - Config: the default settings
func Default() Config {
	return Config{
		Title:       "panoview",
		Width:       1280,
		Height:      720,
		Sensitivity: 0.2,
		ZoomSpeed:   4,
		NudgeStep:   0.5,
		VSync:       true,
		Export: ExportConfig{
			Output: "out.mp4",
			Width:  1920,
			Height: 1080,
			FPS:    30,
			Codec:  "libx264",
		},
	}
}

// Load reads a YAML configuration file and overlays it on the defaults.
// Fields absent from the file keep their default values.
//
// Parameters:
//   - path: path to the YAML file; an empty path returns the defaults
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the file cannot be read or parsed
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

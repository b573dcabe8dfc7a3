// Package config loads and validates the demo configuration from a TOML file.
// Every field has a default, so a missing file or a partial file is valid.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by every validation error returned from Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Snapshot encodings accepted by SnapshotConfig.Format.
const (
	FormatWebP = "webp"
	FormatPNG  = "png"
)

// Config is the root of the demo configuration.
type Config struct {
	// Downscale divides the window framebuffer size to get the traced resolution.
	Downscale int `toml:"downscale"`

	// MaxDepth is the recursion limit for reflection rays.
	MaxDepth int `toml:"max_depth"`

	// Epsilon offsets bounce ray origins along the surface normal.
	Epsilon float32 `toml:"epsilon"`

	// Workers is the number of tracer workers. 1 traces on the frame goroutine.
	Workers int `toml:"workers"`

	// Profiling logs frame statistics once per second.
	Profiling bool `toml:"profiling"`

	Window   WindowConfig   `toml:"window"`
	Scene    SceneConfig    `toml:"scene"`
	Camera   CameraConfig   `toml:"camera"`
	Snapshot SnapshotConfig `toml:"snapshot"`
}

// WindowConfig describes the demo window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`

	// FrameLimit caps the frame rate. 0 is uncapped.
	FrameLimit float64 `toml:"frame_limit"`
}

// SceneConfig describes the generated sphere scene.
type SceneConfig struct {
	// Seed makes scene generation reproducible. 0 seeds from the clock.
	Seed int64 `toml:"seed"`

	RandomSpheres int  `toml:"random_spheres"`
	Ground        bool `toml:"ground"`

	// StartColor fills the pixel buffer before the first frame is traced.
	StartColor [4]float32 `toml:"start_color"`
}

// CameraConfig describes the fly camera.
type CameraConfig struct {
	Position       [3]float32 `toml:"position"`
	Speed          float32    `toml:"speed"`
	Sensitivity    float32    `toml:"sensitivity"`
	FovDegrees     float32    `toml:"fov_degrees"`
	FastMultiplier float32    `toml:"fast_multiplier"`
}

// SnapshotConfig describes image export of the pixel buffer.
type SnapshotConfig struct {
	Dir    string `toml:"dir"`
	Format string `toml:"format"`

	// Scale upscales the exported image by an integer factor with nearest-neighbor sampling.
	Scale int `toml:"scale"`
}

// Default returns the stock demo configuration.
//
// Returns:
//   - Config: a valid configuration with every field set
func Default() Config {
	return Config{
		Downscale: 4,
		MaxDepth:  5,
		Epsilon:   1e-4,
		Workers:   max(runtime.NumCPU()-1, 1),
		Window: WindowConfig{
			Title:  "Oxy Trace",
			Width:  1280,
			Height: 720,
		},
		Scene: SceneConfig{
			RandomSpheres: 5,
			Ground:        true,
			StartColor:    [4]float32{1, 0, 1, 1},
		},
		Camera: CameraConfig{
			Position:       [3]float32{0, 0, -5},
			Speed:          5,
			Sensitivity:    0.001,
			FovDegrees:     45,
			FastMultiplier: 5,
		},
		Snapshot: SnapshotConfig{
			Dir:    "snapshots",
			Format: FormatWebP,
			Scale:  1,
		},
	}
}

// Load reads the configuration at path. A missing file yields the defaults.
//
// Parameters:
//   - path: the TOML file to read
//
// Returns:
//   - Config: the loaded configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
// Unknown keys are rejected so typos do not silently fall back to defaults.
//
// Parameters:
//   - data: TOML document
//
// Returns:
//   - Config: the decoded configuration
//   - error: a decode error or the joined validation errors
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			keys := make([]string, 0, len(strict.Errors))
			for i := range strict.Errors {
				keys = append(keys, strings.Join(strict.Errors[i].Key(), "."))
			}
			return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
		}
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the configuration to path as TOML, creating parent directories as needed.
//
// Parameters:
//   - path: the destination file
//
// Returns:
//   - error: an encode or write error
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate checks every field and returns all problems joined, each wrapping ErrInvalidConfig.
//
// Returns:
//   - error: nil when the configuration is usable
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Downscale >= 1, "downscale must be at least 1, got %d", c.Downscale)
	check(c.MaxDepth >= 1, "max_depth must be at least 1, got %d", c.MaxDepth)
	check(c.Epsilon > 0, "epsilon must be positive, got %g", c.Epsilon)
	check(c.Workers >= 1, "workers must be at least 1, got %d", c.Workers)

	check(c.Window.Width > 0, "window.width must be positive, got %d", c.Window.Width)
	check(c.Window.Height > 0, "window.height must be positive, got %d", c.Window.Height)
	check(c.Window.FrameLimit >= 0, "window.frame_limit must not be negative, got %g", c.Window.FrameLimit)

	check(c.Scene.RandomSpheres >= 0, "scene.random_spheres must not be negative, got %d", c.Scene.RandomSpheres)

	check(c.Camera.Speed > 0, "camera.speed must be positive, got %g", c.Camera.Speed)
	check(c.Camera.Sensitivity > 0, "camera.sensitivity must be positive, got %g", c.Camera.Sensitivity)
	check(c.Camera.FovDegrees > 0 && c.Camera.FovDegrees < 180, "camera.fov_degrees must be in (0, 180), got %g", c.Camera.FovDegrees)
	check(c.Camera.FastMultiplier >= 1, "camera.fast_multiplier must be at least 1, got %g", c.Camera.FastMultiplier)

	check(c.Snapshot.Format == FormatWebP || c.Snapshot.Format == FormatPNG,
		"snapshot.format must be %q or %q, got %q", FormatWebP, FormatPNG, c.Snapshot.Format)
	check(c.Snapshot.Scale >= 1, "snapshot.scale must be at least 1, got %d", c.Snapshot.Scale)

	return errors.Join(errs...)
}

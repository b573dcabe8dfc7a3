package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 4, cfg.Downscale)
	assert.Equal(t, 5, cfg.MaxDepth)
	assert.Equal(t, float32(1e-4), cfg.Epsilon)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, 5, cfg.Scene.RandomSpheres)
	assert.True(t, cfg.Scene.Ground)
	assert.Equal(t, [4]float32{1, 0, 1, 1}, cfg.Scene.StartColor)
	assert.Equal(t, [3]float32{0, 0, -5}, cfg.Camera.Position)
	assert.Equal(t, float32(45), cfg.Camera.FovDegrees)
	assert.Equal(t, FormatWebP, cfg.Snapshot.Format)
}

func TestParse_OverridesOnlyGivenKeys(t *testing.T) {
	doc := `
downscale = 2
workers = 3

[window]
title = "test"
vsync = true

[scene]
seed = 42

[camera]
position = [1, 2.5, -3]
speed = 10

[snapshot]
format = "png"
scale = 4
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Downscale)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "test", cfg.Window.Title)
	assert.True(t, cfg.Window.VSync)
	assert.Equal(t, int64(42), cfg.Scene.Seed)
	assert.Equal(t, [3]float32{1, 2.5, -3}, cfg.Camera.Position)
	assert.Equal(t, float32(10), cfg.Camera.Speed)
	assert.Equal(t, FormatPNG, cfg.Snapshot.Format)
	assert.Equal(t, 4, cfg.Snapshot.Scale)

	// untouched keys keep their defaults
	assert.Equal(t, 5, cfg.MaxDepth)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, float32(0.001), cfg.Camera.Sensitivity)
	assert.True(t, cfg.Scene.Ground)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("max_dept = 3\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "max_dept")
}

func TestParse_RejectsMalformed(t *testing.T) {
	_, err := Parse([]byte("downscale = \n"))
	assert.Error(t, err)
}

func TestValidate_JoinsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Downscale = 0
	cfg.MaxDepth = -1
	cfg.Window.Width = 0
	cfg.Camera.FovDegrees = 180
	cfg.Snapshot.Format = "gif"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	assert.Len(t, joined.Unwrap(), 5)

	msg := err.Error()
	for _, key := range []string{"downscale", "max_depth", "window.width", "camera.fov_degrees", "snapshot.format"} {
		assert.True(t, strings.Contains(msg, key), "missing %s in %q", key, msg)
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_InvalidFileNamesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_depth = 0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), path)
}

func TestSave_RoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Scene.Seed = 7
	cfg.Camera.Position = [3]float32{0.5, 1, -2}
	cfg.Snapshot.Format = FormatPNG
	cfg.Snapshot.Dir = "out"

	path := filepath.Join(t.TempDir(), "nested", "oxytrace.toml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

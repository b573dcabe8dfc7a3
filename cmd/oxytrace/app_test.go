package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/config"
	"github.com/Carmen-Shannon/oxy-trace/engine"
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/tracer"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingEngine captures the settings applyReload pushes into the engine.
type recordingEngine struct {
	engine.Engine

	frameLimit float64
	profiling  bool
}

func (e *recordingEngine) SetFrameLimit(fps float64) { e.frameLimit = fps }
func (e *recordingEngine) EnableProfiler() { e.profiling = true }
func (e *recordingEngine) DisableProfiler() { e.profiling = false }

func TestTracedSize(t *testing.T) {
	w, h := tracedSize(1280, 720, 4)
	assert.Equal(t, 320, w)
	assert.Equal(t, 180, h)

	w, h = tracedSize(3, 2, 4)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)

	w, h = tracedSize(640, 480, 0)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestMinWindowSize(t *testing.T) {
	w, h := minWindowSize(4)
	assert.Equal(t, 320, w)
	assert.Equal(t, 180, h)

	w, h = minWindowSize(0)
	assert.Equal(t, 320, w)
	assert.Equal(t, 180, h)

	// A window at the limit still divides into whole traced pixels.
	for _, downscale := range []int{1, 4, 200, 512} {
		w, h := minWindowSize(downscale)
		assert.GreaterOrEqual(t, w/downscale, 1, "downscale %d", downscale)
		assert.GreaterOrEqual(t, h/downscale, 1, "downscale %d", downscale)
	}
}

func TestAspectRatio(t *testing.T) {
	assert.InDelta(t, 16.0/9.0, aspectRatio(1280, 720), 1e-6)
	assert.Equal(t, float32(1), aspectRatio(0, 720))
}

func TestResolveSeed(t *testing.T) {
	clock := func() time.Time { return time.Unix(0, 42) }
	assert.Equal(t, int64(7), resolveSeed(7, clock))
	assert.Equal(t, int64(42), resolveSeed(0, clock))
}

func TestNewScene(t *testing.T) {
	cfg := config.Default().Scene

	s := newScene(cfg, 1)
	require.Equal(t, 6, s.Len())
	assert.Equal(t, tracer.GroundSphere, s.Spheres()[5])

	cfg.Ground = false
	cfg.RandomSpheres = 2
	assert.Equal(t, 2, newScene(cfg, 1).Len())

	assert.Equal(t, newScene(cfg, 9).Spheres(), newScene(cfg, 9).Spheres())
}

func TestNewCamera(t *testing.T) {
	cfg := config.Default().Camera
	cam := newCamera(cfg, 800, 400)

	assert.Equal(t, common.Vec3{0, 0, -5}, cam.Position())
	assert.InDelta(t, math32.Pi/4, cam.Fov(), 1e-6)
	assert.InDelta(t, 2, cam.Aspect(), 1e-6)
	assert.Equal(t, cfg.Speed, cam.Controller().MoveSpeed())
	assert.Equal(t, cfg.Sensitivity, cam.Controller().MouseSensitivity())
}

func TestOnKeyDown_PRequestsSnapshot(t *testing.T) {
	a := &app{input: camera.NewFlyInput()}

	a.onKeyDown(common.KeyW)
	assert.True(t, a.input.IsKeyDown(common.KeyW))
	assert.False(t, a.snapshotRequested.Load())

	a.onKeyDown(common.KeyP)
	assert.True(t, a.snapshotRequested.Load())
	assert.False(t, a.input.IsKeyDown(common.KeyP))

	a.onKeyUp(common.KeyW)
	assert.False(t, a.input.IsKeyDown(common.KeyW))
}

func TestApplyReload(t *testing.T) {
	eng := &recordingEngine{}
	cfg := config.Default()
	snapshots, err := newSnapshotter(cfg.Snapshot)
	require.NoError(t, err)

	a := &app{cfg: cfg, engine: eng, snapshots: snapshots}

	// Nothing queued.
	a.applyReload()
	assert.Zero(t, eng.frameLimit)

	next := cfg
	next.Profiling = true
	next.Window.FrameLimit = 30
	next.Snapshot.Dir = filepath.Join(t.TempDir(), "shots")
	next.Snapshot.Format = config.FormatPNG
	a.queueReload(next)
	a.applyReload()

	assert.Equal(t, 30.0, eng.frameLimit)
	assert.True(t, eng.profiling)
	assert.Equal(t, next.Snapshot.Dir, a.snapshots.Dir())
	assert.Equal(t, config.FormatPNG, a.snapshots.Format())
	assert.Nil(t, a.reloaded.Load())

	next.Profiling = false
	a.queueReload(next)
	a.applyReload()
	assert.False(t, eng.profiling)
}

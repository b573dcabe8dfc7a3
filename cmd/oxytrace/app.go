package main

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/config"
	"github.com/Carmen-Shannon/oxy-trace/engine"
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/cpu_texture"
	"github.com/Carmen-Shannon/oxy-trace/engine/snapshot"
	"github.com/Carmen-Shannon/oxy-trace/engine/tracer"
)

// app owns the demo state shared by the engine callbacks.
// Update, draw and resize all run on the engine frame goroutine; input callbacks run on the main thread.
type app struct {
	cfg config.Config

	engine  engine.Engine
	texture cpu_texture.CPUTexture
	tracer  tracer.Tracer
	camera  camera.Camera
	input   *camera.FlyInput

	snapshots         snapshot.Snapshotter
	snapshotRequested atomic.Bool

	// reloaded holds a configuration published by the file watcher until the frame goroutine applies it.
	reloaded atomic.Pointer[config.Config]
}

// Smallest window the demo opens to, before the downscale factor is taken into account.
const (
	minWindowWidth  = 320
	minWindowHeight = 180
)

// minWindowSize returns the window size limit that keeps at least one traced pixel per axis,
// so tracedSize never has to round a collapsed framebuffer up.
func minWindowSize(downscale int) (int, int) {
	downscale = max(downscale, 1)
	return max(minWindowWidth, downscale), max(minWindowHeight, downscale)
}

// tracedSize divides the framebuffer size by the downscale factor, never going below one pixel.
func tracedSize(fbWidth, fbHeight, downscale int) (int, int) {
	downscale = max(downscale, 1)
	return max(fbWidth/downscale, 1), max(fbHeight/downscale, 1)
}

// aspectRatio returns width/height, or 1 for a degenerate size.
func aspectRatio(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// resolveSeed returns the configured seed, or a clock seed when it is 0.
func resolveSeed(seed int64, now func() time.Time) int64 {
	if seed != 0 {
		return seed
	}
	return now().UnixNano()
}

// newScene builds the sphere scene described by cfg with the given seed.
func newScene(cfg config.SceneConfig, seed int64) tracer.Scene {
	opts := []tracer.SceneBuilderOption{tracer.WithRandomSpheres(cfg.RandomSpheres, seed)}
	if cfg.Ground {
		opts = append(opts, tracer.WithGroundSphere())
	}
	return tracer.NewScene(opts...)
}

// newCamera builds the fly camera described by cfg for a framebuffer of the given size.
func newCamera(cfg config.CameraConfig, fbWidth, fbHeight int) camera.Camera {
	ctrl := camera.NewCameraController(
		camera.WithPosition(common.Vec3(cfg.Position)),
		camera.WithMoveSpeed(cfg.Speed),
		camera.WithMouseSensitivity(cfg.Sensitivity),
		camera.WithFastMultiplier(cfg.FastMultiplier),
	)
	return camera.NewCamera(
		camera.WithFov(common.Radians(cfg.FovDegrees)),
		camera.WithAspect(aspectRatio(fbWidth, fbHeight)),
		camera.WithController(ctrl),
	)
}

// newSnapshotter builds the image exporter described by cfg.
func newSnapshotter(cfg config.SnapshotConfig) (snapshot.Snapshotter, error) {
	dir, err := config.ExpandPath(cfg.Dir)
	if err != nil {
		return nil, err
	}
	return snapshot.NewSnapshotter(
		snapshot.WithDir(dir),
		snapshot.WithFormat(cfg.Format),
		snapshot.WithScale(cfg.Scale),
	)
}

func (a *app) onKeyDown(keyCode uint32) {
	if keyCode == common.KeyP {
		a.snapshotRequested.Store(true)
		return
	}
	a.input.KeyDown(keyCode)
}

func (a *app) onKeyUp(keyCode uint32) {
	a.input.KeyUp(keyCode)
}

// update moves the camera from the held input and traces the whole frame into the pixel buffer.
func (a *app) update(dt float32) {
	a.applyReload()

	a.input.Apply(a.camera.Controller(), dt)
	a.camera.Update()

	if err := a.tracer.Render(a.texture, a.camera); err != nil {
		log.Printf("[Trace] render: %v", err)
		return
	}

	if a.snapshotRequested.Swap(false) {
		path, err := a.snapshots.Capture(a.texture)
		if err != nil {
			log.Printf("[Snapshot] capture failed: %v", err)
			return
		}
		log.Printf("[Snapshot] wrote %s", path)
	}
}

// draw blits the pixel buffer to the surface. Runs inside the render pass.
func (a *app) draw(float32) {
	if err := a.texture.Present(); err != nil {
		log.Printf("[Trace] present: %v", err)
	}
}

// resize follows the framebuffer with the traced resolution and the camera aspect.
func (a *app) resize(width, height int) {
	w, h := tracedSize(width, height, a.cfg.Downscale)
	if err := a.texture.Resize(w, h); err != nil {
		log.Printf("[Trace] resize to %dx%d: %v", w, h, err)
		return
	}
	a.camera.SetAspect(aspectRatio(width, height))
}

// queueReload hands a freshly loaded configuration to the frame goroutine.
func (a *app) queueReload(cfg config.Config) {
	a.reloaded.Store(&cfg)
}

// applyReload applies the settings that can change while running: frame limit, profiling and snapshot output.
// Everything else needs a restart.
func (a *app) applyReload() {
	next := a.reloaded.Swap(nil)
	if next == nil {
		return
	}

	a.engine.SetFrameLimit(next.Window.FrameLimit)
	if next.Profiling {
		a.engine.EnableProfiler()
	} else {
		a.engine.DisableProfiler()
	}

	if next.Snapshot != a.cfg.Snapshot {
		s, err := newSnapshotter(next.Snapshot)
		if err != nil {
			log.Printf("[Config] keeping snapshot settings: %v", err)
		} else {
			a.snapshots = s
			a.cfg.Snapshot = next.Snapshot
		}
	}

	a.cfg.Window.FrameLimit = next.Window.FrameLimit
	a.cfg.Profiling = next.Profiling
	log.Printf("[Config] reloaded")
}

// describe returns a one-line summary of the running configuration for the startup log.
func (a *app) describe(seed int64) string {
	return fmt.Sprintf("%dx%d traced, %d spheres, depth %d, %d workers, seed %d",
		a.texture.Width(), a.texture.Height(), a.tracer.Scene().Len(), a.tracer.MaxDepth(), a.tracer.Workers(), seed)
}

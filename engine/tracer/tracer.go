package tracer

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-trace/common"
)

const (
	// DefaultMaxDepth is the number of bounces traced per primary ray.
	DefaultMaxDepth = 5

	// DefaultEpsilon offsets bounce origins along the surface normal to avoid self-intersection.
	DefaultEpsilon float32 = 1e-4

	// bandsPerWorker controls how finely rows are split into pool tasks.
	bandsPerWorker = 4

	// poolQueueSize bounds the pending band tasks; Render never submits more than this per frame.
	poolQueueSize = 256
)

// PixelTarget is the write side of a pixel buffer that the tracer renders into.
// SetColor is called from multiple goroutines at once but never for the same pixel.
type PixelTarget interface {
	Width() int
	Height() int
	SetColor(x, y int, c common.Color)
}

// RayGenerator produces the primary ray through a pixel of a width x height image.
// It must be safe to call from multiple goroutines.
type RayGenerator interface {
	RayThroughPixel(x, y, width, height int) Ray
}

// tracer is the implementation of the Tracer interface.
type tracer struct {
	mu *sync.Mutex

	scene Scene

	maxDepth int
	epsilon  float32
	workers  int

	pool worker.DynamicWorkerPool

	lastRenderTime time.Duration
}

// Tracer converts rays into colors by recursively following mirror reflections through a Scene,
// and drives a full-image render into a PixelTarget.
type Tracer interface {
	// Scene returns the scene being traced.
	//
	// Returns:
	//   - Scene: the traced scene
	Scene() Scene

	// MaxDepth returns the recursion depth used for primary rays by Render.
	//
	// Returns:
	//   - int: the max depth
	MaxDepth() int

	// Workers returns the number of pool workers used by Render.
	//
	// Returns:
	//   - int: the worker count
	Workers() int

	// LastRenderTime returns how long the most recent Render call took.
	//
	// Returns:
	//   - time.Duration: duration of the last render, or 0 if none has run
	LastRenderTime() time.Duration

	// TraceRay returns the color seen along ray after at most depth bounces.
	// depth <= 0 yields transparent black, a miss yields opaque white, and a hit yields
	// the bounce color multiplied component-wise by the sphere color.
	//
	// Parameters:
	//   - ray: the ray to trace
	//   - depth: remaining recursion depth
	//
	// Returns:
	//   - common.Color: the traced color
	TraceRay(ray Ray, depth int) common.Color

	// Render traces one primary ray per pixel of target at MaxDepth and writes the results into it.
	// Rows are split into bands traced in parallel; Render returns only once every pixel is written.
	//
	// Parameters:
	//   - target: the pixel buffer to fill
	//   - camera: the source of primary rays
	//
	// Returns:
	//   - error: an error if target or camera is nil
	Render(target PixelTarget, camera RayGenerator) error

	// RenderSequential is the single-threaded equivalent of Render, visiting pixels row by row.
	//
	// Parameters:
	//   - target: the pixel buffer to fill
	//   - camera: the source of primary rays
	//
	// Returns:
	//   - error: an error if target or camera is nil
	RenderSequential(target PixelTarget, camera RayGenerator) error
}

var _ Tracer = &tracer{}

// NewTracer creates a Tracer for the given scene.
// Defaults: max depth 5, epsilon 1e-4, NumCPU-1 workers (at least 1).
//
// Parameters:
//   - s: the scene to trace
//   - options: variadic list of TracerBuilderOption functions to configure the tracer
//
// Returns:
//   - Tracer: the configured tracer
func NewTracer(s Scene, options ...TracerBuilderOption) Tracer {
	if s == nil {
		panic("tracer: scene must not be nil")
	}
	t := &tracer{
		mu:       &sync.Mutex{},
		scene:    s,
		maxDepth: DefaultMaxDepth,
		epsilon:  DefaultEpsilon,
		workers:  max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(t)
	}

	// Initialize the pool after options so WithWorkers can override the default.
	if t.workers > 1 {
		t.pool = worker.NewDynamicWorkerPool(t.workers, poolQueueSize, 1*time.Second)
	}
	return t
}

func (t *tracer) Scene() Scene {
	return t.scene
}

func (t *tracer) MaxDepth() int {
	return t.maxDepth
}

func (t *tracer) Workers() int {
	return t.workers
}

func (t *tracer) LastRenderTime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRenderTime
}

func (t *tracer) TraceRay(ray Ray, depth int) common.Color {
	if depth <= 0 {
		return common.Black
	}

	sphere, dist, ok := t.scene.FindClosestHit(ray)
	if !ok {
		return common.White
	}

	hitPoint := ray.At(dist)
	normal := hitPoint.Sub(sphere.Center).Normalize()
	bounce := Ray{
		Origin:    hitPoint.Add(normal.Scale(t.epsilon)),
		Direction: ray.Direction.Reflect(normal),
	}

	return t.TraceRay(bounce, depth-1).Mul(sphere.Color)
}

func (t *tracer) Render(target PixelTarget, camera RayGenerator) error {
	if target == nil || camera == nil {
		return fmt.Errorf("tracer: render requires a target and a camera")
	}
	if t.pool == nil {
		return t.RenderSequential(target, camera)
	}

	start := time.Now()
	width, height := target.Width(), target.Height()

	// Each band owns a disjoint row range, so SetColor never touches the same index twice.
	// A WaitGroup provides the per-frame barrier; pool.Wait() would block until workers idle-exit.
	bands := min(height, t.workers*bandsPerWorker, poolQueueSize)
	var wg sync.WaitGroup
	for band := range bands {
		y0 := band * height / bands
		y1 := (band + 1) * height / bands
		if y0 == y1 {
			continue
		}

		wg.Add(1)
		t.pool.SubmitTask(worker.Task{
			ID: band,
			Do: func() (any, error) {
				defer wg.Done()
				t.renderRows(target, camera, width, height, y0, y1)
				return nil, nil
			},
		})
	}
	wg.Wait()

	t.recordRenderTime(time.Since(start))
	return nil
}

func (t *tracer) RenderSequential(target PixelTarget, camera RayGenerator) error {
	if target == nil || camera == nil {
		return fmt.Errorf("tracer: render requires a target and a camera")
	}

	start := time.Now()
	width, height := target.Width(), target.Height()
	t.renderRows(target, camera, width, height, 0, height)
	t.recordRenderTime(time.Since(start))
	return nil
}

// renderRows traces every pixel in rows [y0, y1).
func (t *tracer) renderRows(target PixelTarget, camera RayGenerator, width, height, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := range width {
			ray := camera.RayThroughPixel(x, y, width, height)
			target.SetColor(x, y, t.TraceRay(ray, t.maxDepth))
		}
	}
}

func (t *tracer) recordRenderTime(d time.Duration) {
	t.mu.Lock()
	t.lastRenderTime = d
	t.mu.Unlock()
}

package engine

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/profiler"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/window"
)

// FrameRenderer is the part of the renderer the engine drives once per frame.
// renderer.Renderer satisfies it.
type FrameRenderer interface {
	Resize(width, height int)
	BeginFrame() error
	EndFrame()
	Present()
}

// size is a pending framebuffer size queued by the window thread.
type size struct {
	width, height int
}

// engine implements the Engine interface.
// Coordinates the frame goroutine, the quit goroutine, and the window message loop.
type engine struct {
	resizeChannel chan size // latest framebuffer size, drained by the frame goroutine

	wg sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer FrameRenderer

	profiler         *profiler.Profiler
	profilingEnabled bool

	updateCallback   func(deltaTime float32)
	drawCallback     func(deltaTime float32)
	resizeCallback   func(width, height int)
	shutdownCallback func()

	frameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame  time.Time
}

// Engine is the main entry point for the engine.
// It runs update and draw sequentially on a single frame goroutine while the window
// message loop runs on the calling (main) thread.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Profiler returns the engine profiler.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler instance
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetUpdateCallback registers the function called at the start of every frame, before the render pass.
	// Use this for input, camera movement, and filling the pixel buffer. Its duration is reported
	// by the profiler as trace time.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetUpdateCallback(callback func(deltaTime float32))

	// SetDrawCallback registers the function called inside the render pass of every frame.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetDrawCallback(callback func(deltaTime float32))

	// SetResizeCallback registers the function called on the frame goroutine after the renderer
	// has been resized. Never called with a zero size.
	//
	// Parameters:
	//   - callback: function receiving the new framebuffer size in pixels
	SetResizeCallback(callback func(width, height int))

	// SetShutdownCallback registers the function called on the main thread after the frame goroutine
	// has stopped and before the window is destroyed. Use it to release GPU resources.
	//
	// Parameters:
	//   - callback: the cleanup function
	SetShutdownCallback(callback func())

	// SetFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the frame loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// Run starts the frame loop and the window message loop. Blocks until the window closes
	// or Quit is called, then waits for the frame goroutine and shuts down.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times and from any goroutine; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// The window resize callback is wired to queue sizes for the frame goroutine.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, profiling, frame limit)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		resizeChannel:    make(chan size, 1),
		quitChannel:      make(chan struct{}),
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.queueResize)
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				e.window.RequestClose()
			default:
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Run() {
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
	}
	e.signalQuit()
	e.wg.Wait()

	if e.shutdownCallback != nil {
		e.shutdownCallback()
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			log.Printf("[Engine] close window: %v", err)
		}
	}
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// queueResize records the latest framebuffer size. Older pending sizes are dropped,
// so the frame goroutine only ever applies the most recent one.
func (e *engine) queueResize(width, height int) {
	s := size{width: width, height: height}
	for {
		select {
		case e.resizeChannel <- s:
			return
		default:
			select {
			case <-e.resizeChannel:
			default:
			}
		}
	}
}

// handle launches the frame and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleFrames()
	go e.handleQuit()
}

// handleFrames runs the uncapped (or frame-limited) frame loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleFrames() {
	defer e.wg.Done()
	// Recover from panics inside the frame goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] frame goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	e.lastFrame = time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			e.frame()
		}
	}
}

// frame runs one full frame: pending resize, update, render pass with draw, present,
// profiler tick, then the optional frame limit sleep.
func (e *engine) frame() {
	frameStart := time.Now()
	dt := float32(frameStart.Sub(e.lastFrame).Seconds())
	e.lastFrame = frameStart

	e.applyResize()

	if e.updateCallback != nil {
		start := time.Now()
		e.updateCallback(dt)
		e.profiler.RecordTrace(time.Since(start))
	}

	if e.renderer != nil {
		err := e.renderer.BeginFrame()
		switch {
		case err == nil:
			if e.drawCallback != nil {
				e.drawCallback(dt)
			}
			e.renderer.EndFrame()
			e.renderer.Present()
		case errors.Is(err, renderer.ErrSurfaceUnavailable):
			// minimized or mid-resize; try again next frame
		default:
			log.Printf("[Engine] begin frame: %v", err)
		}
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}

	// Frame rate limiting
	if e.frameLimit > 0 {
		if remaining := e.frameLimit - time.Since(frameStart); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// applyResize applies the most recent queued size, if any, to the renderer and the resize callback.
// Zero sizes (minimized windows) still reach the renderer so it stops presenting, but not the callback.
func (e *engine) applyResize() {
	select {
	case s := <-e.resizeChannel:
		if e.renderer != nil {
			e.renderer.Resize(s.width, s.height)
		}
		if e.resizeCallback != nil && s.width > 0 && s.height > 0 {
			e.resizeCallback(s.width, s.height)
		}
	default:
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetUpdateCallback(callback func(deltaTime float32)) {
	e.updateCallback = callback
}

func (e *engine) SetDrawCallback(callback func(deltaTime float32)) {
	e.drawCallback = callback
}

func (e *engine) SetResizeCallback(callback func(width, height int)) {
	e.resizeCallback = callback
}

func (e *engine) SetShutdownCallback(callback func()) {
	e.shutdownCallback = callback
}

// SetFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the frame loop.
func (e *engine) SetFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameLimit = 0
		return
	}
	e.frameLimit = time.Duration(float64(time.Second) / fps)
}

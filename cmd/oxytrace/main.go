// Command oxytrace opens a window and ray traces a sphere scene on the CPU every frame,
// showing the result through a point-sampled full-screen blit.
//
// Controls: WASD to move, Space/X for up/down, Shift to move faster, hold the left mouse
// button to look around, P to save a snapshot, Escape to quit.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/config"
	"github.com/Carmen-Shannon/oxy-trace/engine"
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/cpu_texture"
	"github.com/Carmen-Shannon/oxy-trace/engine/tracer"
	"github.com/Carmen-Shannon/oxy-trace/engine/window"
)

func main() {
	configPath := flag.String("config", "oxytrace.toml", "path to the TOML configuration file")
	watch := flag.Bool("watch", true, "reload frame limit, profiling and snapshot settings when the config file changes")
	flag.Parse()

	path, err := config.ExpandPath(*configPath)
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}

	// ── Window + Renderer ──────────────────────────────────────────────
	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithMinSize(minWindowSize(cfg.Downscale)),
		window.WithMaxSize(max(cfg.Window.Width, 1600), max(cfg.Window.Height, 1200)),
	)

	presentMode := renderer.PresentModeUncapped
	if cfg.Window.VSync {
		presentMode = renderer.PresentModeVSync
	}
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(presentMode),
		renderer.WithClearColor(renderer.DefaultClearColor),
	)

	// ── Pixel buffer ───────────────────────────────────────────────────
	fbWidth, fbHeight := win.FramebufferSize()
	texWidth, texHeight := tracedSize(fbWidth, fbHeight, cfg.Downscale)
	texture, err := cpu_texture.NewCPUTexture(texWidth, texHeight, r,
		cpu_texture.WithLabel("oxytrace_pixels"),
		cpu_texture.WithInitialColor(common.Color(cfg.Scene.StartColor)),
	)
	if err != nil {
		r.Release()
		log.Fatalf("[Main] create pixel buffer: %v", err)
	}

	// ── Scene + Tracer + Camera ────────────────────────────────────────
	seed := resolveSeed(cfg.Scene.Seed, time.Now)
	trc := tracer.NewTracer(newScene(cfg.Scene, seed),
		tracer.WithMaxDepth(cfg.MaxDepth),
		tracer.WithEpsilon(cfg.Epsilon),
		tracer.WithWorkers(cfg.Workers),
	)

	snapshots, err := newSnapshotter(cfg.Snapshot)
	if err != nil {
		texture.Release()
		r.Release()
		log.Fatalf("[Main] %v", err)
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithProfiling(cfg.Profiling),
		engine.WithFrameLimit(cfg.Window.FrameLimit),
	)

	a := &app{
		cfg:       cfg,
		engine:    eng,
		texture:   texture,
		tracer:    trc,
		camera:    newCamera(cfg.Camera, fbWidth, fbHeight),
		input:     camera.NewFlyInput(),
		snapshots: snapshots,
	}

	// ── Input ──────────────────────────────────────────────────────────
	win.SetKeyDownCallback(a.onKeyDown)
	win.SetKeyUpCallback(a.onKeyUp)
	win.SetMouseDownCallback(a.input.MouseDown)
	win.SetMouseUpCallback(a.input.MouseUp)
	win.SetMouseMoveCallback(a.input.MouseMove)

	// ── Frame callbacks ────────────────────────────────────────────────
	eng.SetUpdateCallback(a.update)
	eng.SetDrawCallback(a.draw)
	eng.SetResizeCallback(a.resize)
	eng.SetShutdownCallback(func() {
		texture.Release()
		r.Release()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *watch {
		go func() {
			if err := config.Watch(ctx, path, a.queueReload); err != nil {
				log.Printf("[Config] watch disabled: %v", err)
			}
		}()
	}

	log.Printf("[Main] %s", a.describe(seed))
	eng.Run()
}

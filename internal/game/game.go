// Package game runs the interactive demo: an SDL window with the OpenGL
// device, the drawing layer and the spawnobj scene ticking at a fixed rate.
package game

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/config"
	"github.com/Faultbox/midgard-gfx/internal/demo"
	"github.com/Faultbox/midgard-gfx/internal/engine/camera"
	"github.com/Faultbox/midgard-gfx/internal/engine/debug"
	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/engine/input"
	"github.com/Faultbox/midgard-gfx/internal/engine/renderer"
	"github.com/Faultbox/midgard-gfx/internal/engine/shader"
	"github.com/Faultbox/midgard-gfx/internal/engine/texture"
	"github.com/Faultbox/midgard-gfx/internal/engine/window"
	"github.com/Faultbox/midgard-gfx/internal/graphics"
	"github.com/Faultbox/midgard-gfx/internal/logger"
)

const (
	// tickRate is the number of scene updates per second.
	tickRate = 60
	// maxTicksPerFrame bounds catch-up after a stall.
	maxTicksPerFrame = 5
	playerRadius     = 6
)

// Game is the interactive demo instance.
type Game struct {
	cfg     *config.Config
	running bool

	window  *window.Window
	device  *renderer.Device
	input   *input.Input
	console input.Console
	camera  *camera.Camera2D

	lib       *graphics.Library
	scene     *demo.Scene
	texture   gpu.Texture
	grayscale *renderer.Effect

	grid    *debug.Grid
	overlay bool
	shots   *debug.ScreenshotCapture

	clearColor gpu.Color
	log        *zap.Logger
}

// New creates the window, device and scene and spawns the configured example.
func New(cfg *config.Config) (*Game, error) {
	g := &Game{
		cfg:        cfg,
		grid:       debug.NewGrid(),
		shots:      debug.NewScreenshotCapture(cfg.Demo.OutputDir, "screenshot", texture.Format(cfg.Demo.Format)),
		clearColor: gpu.RGBA(cfg.Render.ClearColor[0], cfg.Render.ClearColor[1], cfg.Render.ClearColor[2], cfg.Render.ClearColor[3]),
		log:        logger.Named("game"),
	}
	g.log.Info("initializing game",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("example", cfg.Demo.Example),
	)

	if err := g.init(); err != nil {
		g.Close()
		return nil, err
	}

	g.log.Info("game initialized successfully")
	return g, nil
}

func (g *Game) init() error {
	cfg := g.cfg

	// Create window (this also creates OpenGL context)
	var err error
	g.window, err = window.New(window.Config{
		Title:      "midgard-gfx",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	// Create device (AFTER window, since OpenGL context must exist)
	w, h := g.window.Size()
	g.device, err = renderer.New(renderer.Config{Width: w, Height: h})
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	g.camera = camera.New2D(w, h)
	g.camera.Scale = cfg.Camera.Zoom
	g.camera.Inverted = cfg.Camera.GravityInverted

	g.lib, err = graphics.Load(graphics.Config{
		Device:    g.device,
		Viewport:  g.camera,
		QueueSize: cfg.Render.TaskQueueSize,
	})
	if err != nil {
		return fmt.Errorf("failed to load graphics: %w", err)
	}

	g.texture, err = demo.LoadTexture(g.device, cfg.Demo.Texture)
	if err != nil {
		return fmt.Errorf("failed to load texture: %w", err)
	}
	g.grayscale, err = g.device.NewEffect(shader.Grayscale.Name, shader.Grayscale)
	if err != nil {
		return fmt.Errorf("failed to create effect: %w", err)
	}

	g.scene = demo.NewScene(g.lib, g.camera, g.texture, uint64(time.Now().UnixNano()))
	g.input = input.New()
	g.window.StartTextInput()

	types, err := demo.Types(cfg.Demo.Example)
	if err != nil {
		return err
	}
	for _, t := range types {
		if err := g.scene.Spawn(t); err != nil {
			return err
		}
	}
	return nil
}

// Run starts the main loop and returns when the window closes.
func (g *Game) Run() error {
	g.running = true

	tick := time.Second / tickRate
	lastTime := time.Now()
	var lag time.Duration
	frameCount := 0
	fpsTimer := time.Now()

	var minFrame time.Duration
	if g.cfg.Graphics.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(g.cfg.Graphics.FPSLimit)
	}

	g.log.Info("starting game loop")

	for g.running {
		frameStart := time.Now()
		lag += frameStart.Sub(lastTime)
		lastTime = frameStart

		// 1. Process input
		if g.input.Update() {
			g.running = false
			break
		}
		g.handleEvents()

		// 2. Fixed-rate scene updates
		ticks := 0
		for lag >= tick && ticks < maxTicksPerFrame {
			g.update()
			lag -= tick
			ticks++
		}
		if ticks == maxTicksPerFrame {
			lag = 0
		}

		// 3. Render
		if err := g.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		// 4. Present (swap buffers)
		g.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			g.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("objects", len(g.scene.Objects())),
				zap.Int("meshes", g.lib.Registry().Len()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}

		if minFrame > 0 {
			if rest := minFrame - time.Since(frameStart); rest > 0 {
				time.Sleep(rest)
			}
		}
	}

	return nil
}

func (g *Game) handleEvents() {
	for _, event := range g.input.Events() {
		if line, submitted, consumed := g.console.Handle(event); consumed {
			if submitted {
				g.exec(line)
			}
			g.updateTitle()
			continue
		}

		switch event.Type {
		case input.EventWindowResize:
			w, h := g.window.Size()
			g.device.Resize(w, h)
			g.camera.Resize(w, h)
		case input.EventMouseWheel:
			g.camera.HandleZoom(event.Wheel)
		case input.EventKeyDown:
			g.handleKey(event.Key)
		}
	}
}

func (g *Game) handleKey(key sdl.Scancode) {
	if n, ok := input.Digit(key); ok {
		g.exec(fmt.Sprintf("/%s %d", demo.Command, n))
		return
	}

	switch key {
	case sdl.SCANCODE_ESCAPE:
		g.running = false
	case sdl.SCANCODE_F1:
		g.overlay = !g.overlay
	case sdl.SCANCODE_F2:
		if g.scene.Shader == nil {
			g.scene.Shader = g.grayscale
		} else {
			g.scene.Shader = nil
		}
	case sdl.SCANCODE_F12:
		g.screenshot()
	case sdl.SCANCODE_C:
		g.scene.Clear()
	}
}

func (g *Game) exec(line string) {
	reply := g.scene.Exec(line)
	if reply.Error {
		g.log.Warn("command failed", zap.String("line", line), zap.String("reply", reply.Text))
	} else {
		g.log.Info(reply.Text)
	}
	g.window.SetTitle("midgard-gfx - " + reply.Text)
}

func (g *Game) updateTitle() {
	if g.console.Open() {
		g.window.SetTitle("> " + g.console.Text())
	}
}

func (g *Game) screenshot() {
	name, err := g.shots.CaptureFromImage(g.device.ReadPixels())
	if err != nil {
		g.log.Error("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("file", name))
}

// update advances the scene one tick.
func (g *Game) update() {
	if !g.console.Open() {
		var right, down float32
		if g.input.IsKeyDown(sdl.SCANCODE_LEFT) || g.input.IsKeyDown(sdl.SCANCODE_A) {
			right--
		}
		if g.input.IsKeyDown(sdl.SCANCODE_RIGHT) || g.input.IsKeyDown(sdl.SCANCODE_D) {
			right++
		}
		if g.input.IsKeyDown(sdl.SCANCODE_UP) || g.input.IsKeyDown(sdl.SCANCODE_W) {
			down--
		}
		if g.input.IsKeyDown(sdl.SCANCODE_DOWN) || g.input.IsKeyDown(sdl.SCANCODE_S) {
			down++
		}
		if right != 0 || down != 0 {
			g.camera.HandleMovement(right, down)
		}
	}

	// The player stands at the screen center
	g.scene.Player = g.camera.Position.Add(g.camera.ScreenSize().Scale(0.5))
	g.scene.Update()
}

// render draws the current frame.
func (g *Game) render() error {
	g.lib.Frame()
	g.device.Clear(g.clearColor)

	drawer := g.lib.Drawer()
	if g.overlay {
		if err := g.grid.Draw(drawer, g.camera); err != nil {
			return err
		}
	}

	// Object failures are logged by the scene and the object is dropped
	_ = g.scene.Draw()

	if err := drawer.DrawHollowCircle(g.scene.Player, playerRadius, gpu.White); err != nil {
		return err
	}
	if g.overlay {
		return debug.MeshOutline(drawer, g.lib.Registry(), g.camera.ScreenPosition(), gpu.Yellow)
	}
	return nil
}

// Close releases everything New created, in reverse order.
func (g *Game) Close() {
	g.log.Info("closing game")

	if g.scene != nil {
		g.scene.Clear()
	}
	if g.lib != nil {
		g.lib.Unload()
	}
	if g.grayscale != nil {
		g.grayscale.Release()
	}
	if g.texture != nil {
		g.texture.Release()
	}
	if g.device != nil {
		g.device.Close()
	}
	if g.window != nil {
		g.window.StopTextInput()
		g.window.Close()
	}
}

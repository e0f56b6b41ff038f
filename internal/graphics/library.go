// Package graphics ties the drawing layer together: it owns the primitive
// drawer, the mesh registry, the call dispatcher and the render-thread queue
// for one graphics device.
package graphics

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/dispatch"
	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/internal/mesh"
	"github.com/Faultbox/midgard-gfx/internal/primitives"
	"github.com/Faultbox/midgard-gfx/internal/renderthread"
)

var (
	ErrNoDevice   = errors.New("graphics: device is nil")
	ErrNoViewport = errors.New("graphics: viewport is nil")
	ErrUnloaded   = errors.New("graphics: library has been unloaded")
)

// Config holds what Load needs.
type Config struct {
	Device   gpu.Device
	Viewport primitives.Viewport

	// QueueSize bounds the render-thread task queue.
	QueueSize int
}

// Library is the loaded drawing layer.
type Library struct {
	mu     sync.RWMutex
	loaded bool

	device     gpu.Device
	effect     gpu.Effect
	queue      *renderthread.Queue
	drawer     *primitives.Drawer
	registry   *mesh.Registry
	dispatcher *dispatch.Dispatcher

	log *zap.Logger
}

// Load creates the vertex-color effect and wires the drawer, registry and
// dispatcher. The calling goroutine becomes the render thread.
func Load(cfg Config) (*Library, error) {
	if cfg.Device == nil {
		return nil, ErrNoDevice
	}
	if cfg.Viewport == nil {
		return nil, ErrNoViewport
	}

	effect, err := cfg.Device.NewVertexColorEffect()
	if err != nil {
		return nil, fmt.Errorf("create vertex color effect: %w", err)
	}

	queue := renderthread.New(cfg.QueueSize)
	queue.Bind()

	registry := mesh.NewRegistry()
	drawer := primitives.NewDrawer(cfg.Device, cfg.Viewport, effect)

	lib := &Library{
		loaded:   true,
		device:   cfg.Device,
		effect:   effect,
		queue:    queue,
		drawer:   drawer,
		registry: registry,
		dispatcher: dispatch.New(dispatch.Config{
			Drawer:   drawer,
			Device:   cfg.Device,
			Registry: registry,
			Queue:    queue,
		}),
		log: logger.Named("graphics"),
	}

	w, h := cfg.Device.Size()
	lib.log.Info("graphics library loaded",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Int("queue_size", cfg.QueueSize),
	)
	return lib, nil
}

// Call forwards to the dispatcher. See dispatch.Dispatcher.Call.
func (l *Library) Call(args ...any) (any, error) {
	l.mu.RLock()
	loaded := l.loaded
	l.mu.RUnlock()
	if !loaded {
		return nil, ErrUnloaded
	}
	return l.dispatcher.Call(args...)
}

// Frame runs the tasks marshalled onto the render thread since the last
// frame. Call it once per frame from the render loop.
func (l *Library) Frame() int {
	return l.queue.Drain()
}

// Drawer returns the primitive drawer.
func (l *Library) Drawer() *primitives.Drawer { return l.drawer }

// Registry returns the mesh registry.
func (l *Library) Registry() *mesh.Registry { return l.registry }

// Queue returns the render-thread queue.
func (l *Library) Queue() *renderthread.Queue { return l.queue }

// Device returns the graphics device.
func (l *Library) Device() gpu.Device { return l.device }

// Loaded reports whether Unload has not run yet.
func (l *Library) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Unload flushes the render queue, disposes every registered mesh and
// releases the vertex-color effect. Textures and shaders handed in by
// callers are dropped, not released. Render thread only; idempotent.
func (l *Library) Unload() {
	l.mu.Lock()
	if !l.loaded {
		l.mu.Unlock()
		return
	}
	l.loaded = false
	l.mu.Unlock()

	l.queue.Close()

	meshes := l.registry.Len()
	l.registry.ReleaseAll()

	l.effect.Release()
	l.effect = nil

	l.log.Info("graphics library unloaded", zap.Int("meshes_released", meshes))
}

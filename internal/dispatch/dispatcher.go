// Package dispatch is the dynamic call surface: a single entry point taking a
// function name and positional arguments, validated against a static
// signature table and forwarded to the primitive drawer or the mesh registry.
package dispatch

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/internal/mesh"
	"github.com/Faultbox/midgard-gfx/internal/primitives"
	"github.com/Faultbox/midgard-gfx/internal/renderthread"
)

// Config wires a Dispatcher to its collaborators. Queue is optional; without
// it calls run on the calling goroutine.
type Config struct {
	Drawer   *primitives.Drawer
	Device   gpu.Device
	Registry *mesh.Registry
	Queue    *renderthread.Queue
}

// Dispatcher validates and routes named calls.
type Dispatcher struct {
	drawer   *primitives.Drawer
	device   gpu.Device
	registry *mesh.Registry
	queue    *renderthread.Queue
	log      *zap.Logger
}

// New creates a dispatcher.
func New(cfg Config) *Dispatcher {
	return &Dispatcher{
		drawer:   cfg.Drawer,
		device:   cfg.Device,
		registry: cfg.Registry,
		queue:    cfg.Queue,
		log:      logger.Named("dispatch"),
	}
}

// Call runs the function named by the first argument with the rest as its
// parameters. It returns true for draw-only functions and the mesh ID (int)
// for mesh-creating ones. Off the render thread the call is marshalled onto
// it and blocks until it has run.
func (d *Dispatcher) Call(raw ...any) (any, error) {
	fn, a, err := d.bind(raw)
	if err != nil {
		d.log.Debug("call rejected", zap.Error(err))
		return nil, err
	}

	var result any
	run := func() { result, err = fn.call(d, a) }

	if d.queue != nil && !d.queue.IsRenderThread() {
		if qerr := d.queue.Invoke(run); qerr != nil {
			return nil, fmt.Errorf("%s: %w", fn.name, qerr)
		}
	} else {
		run()
	}

	if err != nil {
		d.log.Debug("call failed", zap.String("function", fn.name), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// bind resolves the function and converts its arguments.
func (d *Dispatcher) bind(raw []any) (*function, args, error) {
	if len(raw) == 0 {
		return nil, nil, fmt.Errorf("%w: expected a function name", ErrArgCount)
	}
	name, ok := raw[0].(string)
	if !ok {
		return nil, nil, fmt.Errorf("%w: expected a function name for the first argument, got %T", ErrArgType, raw[0])
	}
	fn, ok := functions[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}

	given := raw[1:]
	required := 0
	for _, p := range fn.params {
		if !p.Optional {
			required++
		}
	}
	if len(given) < required || len(given) > len(fn.params) {
		return nil, nil, fmt.Errorf("%w: expected %s for Call(%q, %s), got %d",
			ErrArgCount, countText(required, len(fn.params)), name, Signature(fn.params), len(given))
	}

	a := make(args, len(given))
	for i, v := range given {
		p := fn.params[i]
		cv, ok := convert(p.Kind, v, p.Nullable)
		if !ok {
			return nil, nil, fmt.Errorf("%w: argument %d (%s) for Call(%q) must be of type %s, got %T",
				ErrArgType, i+1, p.Name, name, p.Kind, v)
		}
		a[i] = cv
	}
	return fn, a, nil
}

func countText(lo, hi int) string {
	if lo == hi {
		return fmt.Sprintf("%d arguments", lo)
	}
	return fmt.Sprintf("%d or %d arguments", lo, hi)
}

// Functions lists the callable function names with their signatures, in
// table order.
func Functions() []string {
	out := make([]string, 0, len(order))
	for _, name := range order {
		out = append(out, fmt.Sprintf("%s(%s)", name, Signature(functions[name].params)))
	}
	return out
}

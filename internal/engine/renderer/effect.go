package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/engine/shader"
)

// Effect is a sequence of GL programs, one per pass.
type Effect struct {
	device   *Device
	name     string
	passes   []*Pass
	owned    bool
	released bool
}

// Pass binds one program of an Effect.
type Pass struct {
	effect  *Effect
	program *program
}

// NewVertexColorEffect implements gpu.Device. The effect shares the built-in
// vertex-color program.
func (d *Device) NewVertexColorEffect() (gpu.Effect, error) {
	e := &Effect{device: d, name: shader.VertexColor.Name}
	e.passes = []*Pass{{effect: e, program: d.colorProgram}}
	return e, nil
}

// NewEffect compiles one pass per source. The effect owns its programs.
func (d *Device) NewEffect(name string, sources ...shader.Source) (*Effect, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("renderer: effect %s has no passes", name)
	}
	e := &Effect{device: d, name: name, owned: true}
	for _, src := range sources {
		p, err := newProgram(src)
		if err != nil {
			e.Release()
			return nil, fmt.Errorf("renderer: effect %s: %w", name, err)
		}
		e.passes = append(e.passes, &Pass{effect: e, program: p})
	}
	d.log.Debug("effect created", zap.String("name", name), zap.Int("passes", len(e.passes)))
	return e, nil
}

// Name implements gpu.Effect.
func (e *Effect) Name() string { return e.name }

// Passes implements gpu.Effect.
func (e *Effect) Passes() []gpu.Pass {
	out := make([]gpu.Pass, len(e.passes))
	for i, p := range e.passes {
		out[i] = p
	}
	return out
}

// Release implements gpu.Effect. Shared built-in programs stay alive.
func (e *Effect) Release() {
	if e.released {
		return
	}
	e.released = true
	d := e.device
	for _, p := range e.passes {
		if d.applied == p {
			d.applied = nil
		}
		if e.owned {
			p.program.delete()
		}
	}
}

// Apply implements gpu.Pass.
func (p *Pass) Apply() error {
	if p.effect.released {
		return fmt.Errorf("renderer: effect %s has been released", p.effect.name)
	}
	d := p.effect.device
	d.bindProgram(p.program)
	d.applied = p
	return nil
}

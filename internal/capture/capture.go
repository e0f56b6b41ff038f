// Package capture renders demo scenes headlessly on the software device and
// writes each frame to disk.
package capture

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/config"
	"github.com/Faultbox/midgard-gfx/internal/demo"
	"github.com/Faultbox/midgard-gfx/internal/engine/camera"
	"github.com/Faultbox/midgard-gfx/internal/engine/gpu"
	"github.com/Faultbox/midgard-gfx/internal/engine/raster"
	"github.com/Faultbox/midgard-gfx/internal/engine/texture"
	"github.com/Faultbox/midgard-gfx/internal/graphics"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Seed keeps captured runs reproducible.
const Seed = 1

// FrameName returns the file name of frame i.
func FrameName(dir string, i int, format string) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%04d.%s", i, format))
}

// Run spawns the configured example and writes cfg.Demo.Frames frames to
// cfg.Demo.OutputDir. Progress is drawn to progress. It returns the files
// written, in order.
func Run(cfg *config.Config, progress io.Writer) ([]string, error) {
	log := logger.Named("capture")

	types, err := demo.Types(cfg.Demo.Example)
	if err != nil {
		return nil, err
	}

	// Render at supersample scale; zooming by the same factor keeps the
	// world view of an unscaled width x height camera at the origin.
	ss := max(cfg.Demo.Supersample, 1)
	width, height := cfg.Graphics.Width, cfg.Graphics.Height
	dev := raster.New(width*ss, height*ss)
	dev.SetRecording(false)

	cam := camera.New2D(width*ss, height*ss)
	cam.Scale = cfg.Camera.Zoom * float32(ss)
	cam.Inverted = cfg.Camera.GravityInverted
	cam.CenterOn(math.Vec2{X: float32(width) / 2, Y: float32(height) / 2})

	lib, err := graphics.Load(graphics.Config{
		Device:    dev,
		Viewport:  cam,
		QueueSize: cfg.Render.TaskQueueSize,
	})
	if err != nil {
		return nil, err
	}
	defer lib.Unload()

	tex, err := demo.LoadTexture(dev, cfg.Demo.Texture)
	if err != nil {
		return nil, fmt.Errorf("load texture: %w", err)
	}
	defer tex.Release()

	scene := demo.NewScene(lib, cam, tex, Seed)
	defer scene.Clear()
	for _, t := range types {
		if err := scene.Spawn(t); err != nil {
			return nil, err
		}
	}

	log.Info("capture started",
		zap.String("example", cfg.Demo.Example),
		zap.Int("frames", cfg.Demo.Frames),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("supersample", ss),
		zap.String("output", cfg.Demo.OutputDir),
	)

	bar := progressbar.NewOptions(cfg.Demo.Frames,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("capturing"),
		progressbar.OptionShowCount(),
	)
	defer bar.Close()

	c := cfg.Render.ClearColor
	clearColor := gpu.RGBA(c[0], c[1], c[2], c[3])

	files := make([]string, 0, cfg.Demo.Frames)
	for i := range cfg.Demo.Frames {
		lib.Frame()
		scene.Update()

		dev.Clear(clearColor)
		if err := scene.Draw(); err != nil {
			log.Warn("frame drew with errors", zap.Int("frame", i), zap.Error(err))
		}

		name := FrameName(cfg.Demo.OutputDir, i, cfg.Demo.Format)
		if err := texture.Save(name, texture.Downsample(dev.Image(), ss)); err != nil {
			return files, fmt.Errorf("frame %d: %w", i, err)
		}
		files = append(files, name)
		_ = bar.Add(1)
	}

	log.Info("capture finished", zap.Int("frames", len(files)))
	return files, nil
}

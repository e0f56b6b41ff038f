package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagExample    = flag.String("example", "", "Demo object to spawn (ExampleLine, ExampleScaleMesh)")
	flagZoom       = flag.Float64("zoom", 0, "Camera zoom")
	flagFrames     = flag.Int("frames", 0, "Number of frames to capture")
	flagOut        = flag.String("out", "", "Capture output directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagExample != "" {
		cfg.Demo.Example = *flagExample
	}
	if *flagZoom > 0 {
		cfg.Camera.Zoom = float32(*flagZoom)
	}
	if *flagFrames > 0 {
		cfg.Demo.Frames = *flagFrames
	}
	if *flagOut != "" {
		cfg.Demo.OutputDir = *flagOut
	}
}

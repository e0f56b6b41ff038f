// Package config handles demo and library configuration loading.
package config

// Config holds all settings for the demo binaries.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Render   RenderConfig   `yaml:"render"`
	Demo     DemoConfig     `yaml:"demo"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// CameraConfig holds the screen-space projection settings.
type CameraConfig struct {
	Zoom            float32 `yaml:"zoom"`
	GravityInverted bool    `yaml:"gravity_inverted"`
}

// RenderConfig holds render loop settings.
type RenderConfig struct {
	TaskQueueSize int      `yaml:"task_queue_size"` // Capacity of the render-thread task queue
	ClearColor    [4]uint8 `yaml:"clear_color,flow"`
}

// DemoConfig selects the demo scene and capture output.
type DemoConfig struct {
	Example     string `yaml:"example"`     // spawnobj type: ExampleLine, ExampleScaleMesh
	Texture     string `yaml:"texture"`     // Optional texture for mesh demos (png, tga, bmp, webp)
	Frames      int    `yaml:"frames"`      // Frames written by primcapture
	OutputDir   string `yaml:"output_dir"`  // Capture destination
	Format      string `yaml:"format"`      // webp or png
	Supersample int    `yaml:"supersample"` // Render scale factor before downsampling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Camera: CameraConfig{
			Zoom:            1,
			GravityInverted: false,
		},
		Render: RenderConfig{
			TaskQueueSize: 256,
			ClearColor:    [4]uint8{20, 20, 28, 255},
		},
		Demo: DemoConfig{
			Example:     "ExampleLine",
			Frames:      60,
			OutputDir:   "frames",
			Format:      "webp",
			Supersample: 1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

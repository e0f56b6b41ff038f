// Package main renders demo frames on the software device and writes them
// as WebP or PNG files.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/capture"
	"github.com/Faultbox/midgard-gfx/internal/config"
	"github.com/Faultbox/midgard-gfx/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	files, err := capture.Run(cfg, os.Stderr)
	if err != nil {
		logger.Error("capture failed", zap.Error(err), zap.Int("frames_written", len(files)))
		logger.Sync()
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr)
	logger.Info("frames written",
		zap.Int("count", len(files)),
		zap.String("dir", cfg.Demo.OutputDir),
	)
}

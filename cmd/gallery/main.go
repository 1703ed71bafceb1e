// Package main is the entry point for the Midgard gallery viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gallery/internal/config"
	"github.com/Faultbox/midgard-gallery/internal/game"
	"github.com/Faultbox/midgard-gallery/internal/logger"
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

	logger.Info("=== Midgard Gallery ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, err := game.New(cfg)
	if err != nil {
		logger.Error("failed to start gallery", zap.Error(err))
		os.Exit(1)
	}
	defer g.Close()

	if err := g.Run(ctx); err != nil {
		logger.Error("gallery error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("gallery closed normally")
}

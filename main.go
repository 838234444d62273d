// canvas-chat is the Canvas AI chat service: a streaming chat backend for
// a collaborative whiteboard, speaking SSE over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/canvasboard/canvas-chat/internal/app"
	"github.com/canvasboard/canvas-chat/internal/config"
	"github.com/canvasboard/canvas-chat/internal/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := log.New(log.Config{JSON: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("canvas chat service starting", "addr", cfg.Addr(), "model", cfg.Model)
	return a.Run(ctx)
}

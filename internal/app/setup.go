package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/canvasboard/canvas-chat/internal/api"
	"github.com/canvasboard/canvas-chat/internal/chat"
	"github.com/canvasboard/canvas-chat/internal/config"
	"github.com/canvasboard/canvas-chat/internal/log"
	"github.com/canvasboard/canvas-chat/internal/model"
	"github.com/canvasboard/canvas-chat/internal/render"
	"github.com/canvasboard/canvas-chat/internal/session"
)

// Setup assembles the application from configuration. Everything is
// in-memory, so there is no teardown beyond cancelling Run's context.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	g, err := provideGenkit(ctx)
	if err != nil {
		return nil, err
	}

	client, err := model.NewClient(g, cfg.Model, logger)
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}

	store := session.NewStore(cfg.MaxHistoryMessages, logger)

	orchestrator, err := chat.New(client, client, render.NewMarkdown(), logger)
	if err != nil {
		return nil, fmt.Errorf("creating orchestrator: %w", err)
	}

	server, err := api.NewServer(api.ServerConfig{
		Logger:       logger,
		Store:        store,
		Orchestrator: orchestrator,
		Model:        cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating http server: %w", err)
	}

	logger.Info("application assembled",
		"model", cfg.Model,
		"max_history", cfg.MaxHistoryMessages,
		"session_ttl", cfg.SessionTTL(),
	)

	return &App{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Server: server,
	}, nil
}

// provideGenkit initializes Genkit with the Google AI plugin. The plugin
// reads GEMINI_API_KEY from the environment; config validation has already
// checked its presence.
func provideGenkit(ctx context.Context) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with googleai plugin")
	}
	return g, nil
}

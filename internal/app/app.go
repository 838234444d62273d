// Package app wires the service together: configuration, Genkit, the
// session store, the orchestrator, and the HTTP server.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/canvasboard/canvas-chat/internal/api"
	"github.com/canvasboard/canvas-chat/internal/config"
	"github.com/canvasboard/canvas-chat/internal/log"
	"github.com/canvasboard/canvas-chat/internal/session"
)

// sweepInterval is how often the store is scanned for idle sessions.
const sweepInterval = 10 * time.Minute

// App holds the assembled service.
type App struct {
	Config *config.Config
	Logger log.Logger
	Store  *session.Store
	Server *api.Server
}

// Run serves HTTP and sweeps stale sessions until ctx is cancelled. Both
// loops stop on the first error or on shutdown, whichever comes first.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Server.Run(ctx, a.Config.Addr())
	})
	g.Go(func() error {
		a.Store.Sweep(ctx, sweepInterval, a.Config.SessionTTL())
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}

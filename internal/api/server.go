// Package api is the HTTP surface: the SSE chat stream, session
// maintenance endpoints, and the health probe.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/canvasboard/canvas-chat/internal/chat"
	"github.com/canvasboard/canvas-chat/internal/log"
	"github.com/canvasboard/canvas-chat/internal/session"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// ServerConfig contains the server's dependencies.
type ServerConfig struct {
	Logger       log.Logger
	Store        *session.Store     // Required
	Orchestrator *chat.Orchestrator // Required
	Model        string             // Reported by /health
	RateBurst    int                // Per-IP burst size (0 = default 60)
}

// Server is the JSON/SSE HTTP server.
type Server struct {
	handler http.Handler
	logger  log.Logger
}

// NewServer creates a server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Orchestrator == nil {
		return nil, errors.New("orchestrator is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	ch := &chatHandler{store: cfg.Store, orchestrator: cfg.Orchestrator, logger: logger}
	sh := &sessionHandler{store: cfg.Store, logger: logger}
	hh := &healthHandler{store: cfg.Store, model: cfg.Model, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", ch.stream)
	mux.HandleFunc("POST /chat/context", sh.updateContext)
	mux.HandleFunc("POST /chat/clear", sh.clear)
	mux.HandleFunc("DELETE /chat/session/{id}", sh.deleteSession)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack, outermost first: Recovery -> Logging -> RateLimit.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health bypasses the middleware stack so probes never get rate limited.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", hh.health)
	topMux.Handle("/", handler)

	return &Server{handler: topMux, logger: logger}, nil
}

// Handler returns the server as an http.Handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		// WriteTimeout stays 0: SSE responses outlive any fixed deadline,
		// and the per-phase generation timeouts bound each stream anyway.
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

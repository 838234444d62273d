package api

import (
	"net/http"

	"github.com/canvasboard/canvas-chat/internal/log"
	"github.com/canvasboard/canvas-chat/internal/session"
)

// healthHandler is the liveness probe for container orchestrators. It
// reports the configured model and the live session count.
type healthHandler struct {
	store  *session.Store
	model  string
	logger log.Logger
}

func (h *healthHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"model":    h.model,
		"sessions": h.store.Len(),
	}, h.logger)
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/canvasboard/canvas-chat/internal/canvas"
	"github.com/canvasboard/canvas-chat/internal/log"
	"github.com/canvasboard/canvas-chat/internal/session"
)

// sessionHandler serves the session maintenance endpoints: canvas context
// updates, history clearing, and deletion.
type sessionHandler struct {
	store  *session.Store
	logger log.Logger
}

// contextRequest is the POST /chat/context body. When Description is set
// it becomes the context verbatim; otherwise Elements are summarized.
// Neither means the board is explicitly empty.
type contextRequest struct {
	SessionID   string           `json:"session_id"`
	Elements    []canvas.Element `json:"elements"`
	Description string           `json:"description"`
}

// updateContext handles POST /chat/context. Unlike /chat, it never creates
// a session: pushing board state for an unknown id is a client bug and
// returns 404.
func (h *sessionHandler) updateContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}

	sess, ok := h.store.Get(req.SessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "session_not_found", "session not found", h.logger)
		return
	}

	switch {
	case req.Description != "":
		sess.SetContext(req.Description)
	case len(req.Elements) > 0:
		sess.SummarizeElements(req.Elements)
	default:
		sess.SetContext("")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"context_length": len(sess.Context()),
	}, h.logger)
}

// clearRequest is the POST /chat/clear body.
type clearRequest struct {
	SessionID string `json:"session_id"`
}

// clear handles POST /chat/clear. Clearing an unknown session succeeds:
// the end state (no history, default context) is the same either way.
func (h *sessionHandler) clear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}

	msg := "session not found (already clean)"
	if sess, ok := h.store.Get(req.SessionID); ok {
		sess.Clear()
		msg = "session cleared"
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": msg,
	}, h.logger)
}

// deleteSession handles DELETE /chat/session/{id}. Idempotent.
func (h *sessionHandler) deleteSession(w http.ResponseWriter, r *http.Request) {
	h.store.Delete(r.PathValue("id"))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

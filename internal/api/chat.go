package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/canvasboard/canvas-chat/internal/chat"
	"github.com/canvasboard/canvas-chat/internal/log"
	"github.com/canvasboard/canvas-chat/internal/session"
)

// maxRequestBody caps chat request bodies at 1MB.
const maxRequestBody = 1 << 20

// chatHandler serves the streaming chat endpoint.
type chatHandler struct {
	store        *session.Store
	orchestrator *chat.Orchestrator
	logger       log.Logger
}

// chatRequest is the POST /chat body.
type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// stream handles POST /chat. The response is a data-only SSE stream; every
// payload carries a "type" discriminator. The session id actually used is
// advertised in the X-Session-Id header before the stream starts.
func (h *chatHandler) stream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "missing_message", "message is required", h.logger)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming not supported", h.logger)
		return
	}

	id, sess := h.store.GetOrCreate(req.SessionID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("X-Session-Id", id)

	sink := &sseSink{w: w, flusher: flusher}

	h.logger.Debug("stream started", "session_id", id)
	if err := h.orchestrator.Run(r.Context(), id, sess, req.Message, sink); err != nil {
		// Write failure usually means the client disconnected.
		h.logger.Debug("stream aborted", "session_id", id, "error", err)
		return
	}
	h.logger.Debug("stream completed", "session_id", id)
}

// sseSink writes chat events as data-only SSE frames, flushing after each
// so tokens reach the client immediately.
type sseSink struct {
	w       io.Writer
	flusher http.Flusher
}

// Send marshals event and writes one "data:" frame.
func (s *sseSink) Send(event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// Comment writes a keep-alive comment frame that clients ignore.
func (s *sseSink) Comment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return fmt.Errorf("writing comment: %w", err)
	}
	s.flusher.Flush()
	return nil
}

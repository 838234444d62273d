package chat

import (
	"github.com/canvasboard/canvas-chat/internal/canvas"
)

// Event type discriminators on the wire.
const (
	EventToken        = "token"
	EventDone         = "done"
	EventCanvasAction = "canvas_action"
	EventToolAction   = "tool_action"
	EventError        = "error"
)

// TokenEvent carries one streamed text fragment.
type TokenEvent struct {
	Type  string `json:"type"`
	Token string `json:"token"`
	Done  bool   `json:"done"`
}

// DoneEvent marks the end of the text phase and carries the rendered HTML.
type DoneEvent struct {
	Type      string `json:"type"`
	Token     string `json:"token"`
	Done      bool   `json:"done"`
	HTML      string `json:"html"`
	SessionID string `json:"session_id"`
}

// CanvasActionEvent carries elements to draw on the board.
type CanvasActionEvent struct {
	Type     string                 `json:"type"`
	Elements []canvas.ParsedElement `json:"elements"`
}

// ToolActionEvent asks the caller to dispatch a downstream capability.
// Which optional fields are set depends on the tool.
type ToolActionEvent struct {
	Type   string `json:"type"`
	Tool   string `json:"tool"`
	Prompt string `json:"prompt,omitempty"`
	Style  string `json:"style,omitempty"`
	Text   string `json:"text,omitempty"`
}

// ErrorEvent reports a failed turn. The session is left intact for retry.
type ErrorEvent struct {
	Type      string `json:"type"`
	Done      bool   `json:"done"`
	Error     string `json:"error"`
	SessionID string `json:"session_id"`
}

func newTokenEvent(token string) TokenEvent {
	return TokenEvent{Type: EventToken, Token: token}
}

func newDoneEvent(html, sessionID string) DoneEvent {
	return DoneEvent{Type: EventDone, Done: true, HTML: html, SessionID: sessionID}
}

func newErrorEvent(msg, sessionID string) ErrorEvent {
	return ErrorEvent{Type: EventError, Done: true, Error: msg, SessionID: sessionID}
}

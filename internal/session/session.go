// Package session holds per-conversation state: bounded message history,
// the canvas context string, and activity timestamps.
//
// State is volatile and in-memory only; the Store owns every Session and
// evicts idle ones by TTL.
package session

import (
	"sync"
	"time"

	"github.com/canvasboard/canvas-chat/internal/canvas"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultContext is the canvas context of a fresh (or cleared) session,
// before the client has pushed any board state.
const DefaultContext = "No canvas elements loaded yet."

// Message is a single conversation turn. Meta is an opaque side channel
// (e.g. an extended reasoning payload) that is round-tripped unmodified
// but never surfaced to the end user.
type Message struct {
	Role    string
	Content string
	Meta    map[string]any
}

// Input is the bundle a completion request is built from.
type Input struct {
	// History is the trailing window of prior turns, excluding the
	// just-appended user message.
	History []Message

	// Context is the current canvas context string.
	Context string

	// Augmented is the user message with the live context prepended.
	// History alone biases the model toward stale board state; re-injecting
	// the current context every turn overrides that bias.
	Augmented string
}

// Session is one conversation's state. All methods are safe for concurrent
// use; each mutation is atomic. Two requests racing on the same session can
// still interleave across backend calls — that is last-write-wins, by
// documented policy.
type Session struct {
	mu            sync.Mutex
	messages      []Message
	canvasContext string
	maxHistory    int
	createdAt     time.Time
	lastActive    time.Time
}

func newSession(maxHistory int) *Session {
	now := time.Now()
	return &Session{
		canvasContext: DefaultContext,
		maxHistory:    maxHistory,
		createdAt:     now,
		lastActive:    now,
	}
}

// AppendUser records a user message and refreshes last activity.
func (s *Session) AppendUser(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, Message{Role: RoleUser, Content: text})
	s.lastActive = time.Now()
}

// AppendAssistant records the assistant turn, attaching the optional side
// channel verbatim, then enforces the history cap.
func (s *Session) AppendAssistant(text string, meta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: text, Meta: meta})
	s.trimLocked()
	s.lastActive = time.Now()
}

// BuildInput returns the completion input bundle for text. The history
// window excludes the final message when it is the just-appended copy of
// text, to avoid sending it twice.
func (s *Session) BuildInput(text string) Input {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.messages
	if n := len(history); n > 0 && history[n-1].Role == RoleUser && history[n-1].Content == text {
		history = history[:n-1]
	}
	if len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	window := make([]Message, len(history))
	copy(window, history)

	return Input{
		History:   window,
		Context:   s.canvasContext,
		Augmented: "Current canvas context: " + s.canvasContext + "\n\n" + text,
	}
}

// trimLocked enforces the history cap with suffix retention: reslice to the
// most recent maxHistory messages once the backlog doubles, so the cost is
// O(1) amortized and stored length never exceeds 2x the cap.
func (s *Session) trimLocked() {
	if len(s.messages) <= 2*s.maxHistory {
		return
	}
	trimmed := make([]Message, s.maxHistory)
	copy(trimmed, s.messages[len(s.messages)-s.maxHistory:])
	s.messages = trimmed
}

// SetContext replaces the canvas context string. An empty description
// resets to the explicit empty-canvas sentinel.
func (s *Session) SetContext(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == "" {
		text = canvas.EmptySummary
	}
	s.canvasContext = text
	s.lastActive = time.Now()
}

// SummarizeElements replaces the context with a deterministic summary of
// the given board elements and returns the new context string.
func (s *Session) SummarizeElements(elements []canvas.Element) string {
	summary := canvas.Summarize(elements)
	s.SetContext(summary)
	return summary
}

// NoteDrawn appends a machine-generated summary of freshly drawn elements
// to the context, so subsequent turns know what the assistant just added.
func (s *Session) NoteDrawn(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvasContext += "\nJust drawn by assistant: " + summary
	s.lastActive = time.Now()
}

// Clear resets history and context to their initial defaults.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.canvasContext = DefaultContext
	s.lastActive = time.Now()
}

// Context returns the current canvas context string.
func (s *Session) Context() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvasContext
}

// MessageCount returns the stored history length.
func (s *Session) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Messages returns a copy of the stored history.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]Message, len(s.messages))
	copy(cp, s.messages)
	return cp
}

// LastActive returns the last-activity timestamp.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

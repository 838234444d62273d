package chat_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvasboard/canvas-chat/internal/chat"
	"github.com/canvasboard/canvas-chat/internal/log"
	"github.com/canvasboard/canvas-chat/internal/render"
	"github.com/canvasboard/canvas-chat/internal/session"
	"github.com/canvasboard/canvas-chat/internal/testutil"
)

// collectSink records every event and comment in order.
type collectSink struct {
	events   []any
	comments []string
}

func (s *collectSink) Send(event any) error {
	s.events = append(s.events, event)
	return nil
}

func (s *collectSink) Comment(text string) error {
	s.comments = append(s.comments, text)
	return nil
}

func newTestOrchestrator(t *testing.T, backend *testutil.ScriptedBackend) *chat.Orchestrator {
	t.Helper()
	o, err := chat.New(backend, backend, render.NewMarkdown(), log.NewNop())
	require.NoError(t, err)
	return o
}

func newTestSession(t *testing.T) (string, *session.Session) {
	t.Helper()
	store := session.NewStore(20, log.NewNop())
	return store.GetOrCreate("")
}

func tokensOf(t *testing.T, events []any) string {
	t.Helper()
	var out string
	for _, e := range events {
		if te, ok := e.(chat.TokenEvent); ok {
			out += te.Token
		}
	}
	return out
}

func TestOrchestratorNew(t *testing.T) {
	t.Parallel()

	backend := testutil.NewScriptedBackend("ok")
	renderer := render.NewMarkdown()

	_, err := chat.New(nil, backend, renderer, nil)
	assert.Error(t, err)
	_, err = chat.New(backend, nil, renderer, nil)
	assert.Error(t, err)
	_, err = chat.New(backend, backend, nil, nil)
	assert.Error(t, err)
	_, err = chat.New(backend, backend, renderer, nil)
	assert.NoError(t, err)
}

func TestOrchestratorPlainTurn(t *testing.T) {
	t.Parallel()

	backend := testutil.NewScriptedBackend("fallback")
	backend.Script("goroutine", "A goroutine ", "is a lightweight thread.")
	o := newTestOrchestrator(t, backend)
	id, sess := newTestSession(t)

	sink := &collectSink{}
	err := o.Run(context.Background(), id, sess, "what is a goroutine?", sink)
	require.NoError(t, err)

	// Tokens arrive in order and reassemble the full text.
	assert.Equal(t, "A goroutine is a lightweight thread.", tokensOf(t, sink.events))

	// The final event is done, carrying html and the session id.
	done, ok := sink.events[len(sink.events)-1].(chat.DoneEvent)
	require.True(t, ok, "last event should be done, got %T", sink.events[len(sink.events)-1])
	assert.True(t, done.Done)
	assert.Equal(t, id, done.SessionID)
	assert.Contains(t, done.HTML, "lightweight thread")

	// Both turns landed in the session.
	msgs := sess.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, session.RoleUser, msgs[0].Role)
	assert.Equal(t, session.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "A goroutine is a lightweight thread.", msgs[1].Content)
}

func TestOrchestratorReasoningSuppressed(t *testing.T) {
	t.Parallel()

	backend := testutil.NewScriptedBackend("<think>plan</think>Hello")
	o := newTestOrchestrator(t, backend)
	id, sess := newTestSession(t)

	sink := &collectSink{}
	require.NoError(t, o.Run(context.Background(), id, sess, "hi", sink))

	assert.Equal(t, "Hello", tokensOf(t, sink.events))

	// The stored assistant message is the cleaned text.
	msgs := sess.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hello", msgs[1].Content)
}

func TestOrchestratorStreamFailure(t *testing.T) {
	t.Parallel()

	backend := testutil.NewScriptedBackend("unused")
	backend.FailCompletions(errors.New("model unavailable"))
	o := newTestOrchestrator(t, backend)
	id, sess := newTestSession(t)

	sink := &collectSink{}
	require.NoError(t, o.Run(context.Background(), id, sess, "hello", sink))

	require.Len(t, sink.events, 1)
	ev, ok := sink.events[0].(chat.ErrorEvent)
	require.True(t, ok)
	assert.True(t, ev.Done)
	assert.Equal(t, id, ev.SessionID)
	assert.Contains(t, ev.Error, "model unavailable")

	// The user message is retained for retry; no assistant turn was stored.
	msgs := sess.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, session.RoleUser, msgs[0].Role)
}

func TestOrchestratorDrawTurn(t *testing.T) {
	t.Parallel()

	backend := testutil.NewScriptedBackend("Adding a rectangle now.")
	backend.SetElements(`[{"type":"rectangle","text":"Start"},{"type":"rectangle"}]`)
	o := newTestOrchestrator(t, backend)
	id, sess := newTestSession(t)

	sink := &collectSink{}
	require.NoError(t, o.Run(context.Background(), id, sess, "draw two boxes", sink))

	// canvas_action follows done.
	var action chat.CanvasActionEvent
	found := false
	doneIdx, actionIdx := -1, -1
	for i, e := range sink.events {
		switch ev := e.(type) {
		case chat.DoneEvent:
			doneIdx = i
		case chat.CanvasActionEvent:
			action, found = ev, true
			actionIdx = i
		}
	}
	require.True(t, found, "expected a canvas_action event")
	assert.Greater(t, actionIdx, doneIdx, "canvas_action must come after done")
	require.Len(t, action.Elements, 2)
	assert.True(t, action.Elements[0].Valid())
	assert.Equal(t, "Start", action.Elements[0].Element.Text)

	// The session context records what was drawn.
	assert.Contains(t, sess.Context(), "Just drawn by assistant:")
	assert.Contains(t, sess.Context(), "2 rectangle(s)")

	// The element prompt carried the user message and canvas context.
	calls := backend.ElementCalls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "draw two boxes")
	assert.Contains(t, calls[0], session.DefaultContext)
}

func TestOrchestratorDrawMalformedOutput(t *testing.T) {
	t.Parallel()

	backend := testutil.NewScriptedBackend("Working on it.")
	backend.SetElements("sorry, I can't produce JSON today")
	o := newTestOrchestrator(t, backend)
	id, sess := newTestSession(t)

	sink := &collectSink{}
	require.NoError(t, o.Run(context.Background(), id, sess, "draw a box", sink))

	// No canvas_action and no error: the turn still completed with done.
	for _, e := range sink.events {
		_, isAction := e.(chat.CanvasActionEvent)
		_, isErr := e.(chat.ErrorEvent)
		assert.False(t, isAction)
		assert.False(t, isErr)
	}
	_, ok := sink.events[len(sink.events)-1].(chat.DoneEvent)
	assert.True(t, ok)
	assert.NotContains(t, sess.Context(), "Just drawn")
}

func TestOrchestratorDrawGeneratorFailure(t *testing.T) {
	t.Parallel()

	backend := testutil.NewScriptedBackend("Working on it.")
	backend.FailElements(errors.New("quota exhausted"))
	o := newTestOrchestrator(t, backend)
	id, sess := newTestSession(t)

	sink := &collectSink{}
	require.NoError(t, o.Run(context.Background(), id, sess, "draw a box", sink))

	// Text phase already succeeded; the failure is swallowed.
	_, ok := sink.events[len(sink.events)-1].(chat.DoneEvent)
	assert.True(t, ok)
}

func TestOrchestratorToolActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		message   string
		wantTool  string
		wantStyle string
		wantText  bool
	}{
		{
			name:      "diagram carries style and prompt",
			message:   "draw a flowchart of the signup flow",
			wantTool:  "diagram",
			wantStyle: "flowchart",
		},
		{
			name:     "tts carries the response text",
			message:  "read aloud what you just said",
			wantTool: "tts",
			wantText: true,
		},
		{
			name:     "image carries the prompt",
			message:  "generate an image of a mountain",
			wantTool: "image",
		},
		{
			name:     "sketch carries the prompt",
			message:  "sketch a small house",
			wantTool: "sketch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := testutil.NewScriptedBackend("Here you go.")
			o := newTestOrchestrator(t, backend)
			id, sess := newTestSession(t)

			sink := &collectSink{}
			require.NoError(t, o.Run(context.Background(), id, sess, tt.message, sink))

			var action chat.ToolActionEvent
			found := false
			for _, e := range sink.events {
				if ev, ok := e.(chat.ToolActionEvent); ok {
					action, found = ev, true
				}
			}
			require.True(t, found, "expected a tool_action event")
			assert.Equal(t, tt.wantTool, action.Tool)
			assert.Equal(t, tt.wantStyle, action.Style)
			if tt.wantText {
				assert.Equal(t, "Here you go.", action.Text)
			} else {
				assert.Equal(t, tt.message, action.Prompt)
			}
		})
	}
}

func TestOrchestratorHistoryFlowsToBackend(t *testing.T) {
	t.Parallel()

	backend := testutil.NewScriptedBackend("answer")
	o := newTestOrchestrator(t, backend)
	id, sess := newTestSession(t)

	require.NoError(t, o.Run(context.Background(), id, sess, "first question", &collectSink{}))
	require.NoError(t, o.Run(context.Background(), id, sess, "second question", &collectSink{}))

	calls := backend.CompletionCalls()
	require.Len(t, calls, 2)
	assert.Zero(t, calls[0].History, "first turn starts with no history")
	assert.Equal(t, 2, calls[1].History, "second turn sees the first exchange")
	assert.Contains(t, calls[1].Message, "second question")
	assert.Contains(t, calls[1].Message, "Current canvas context:")
	assert.Contains(t, calls[1].System, session.DefaultContext)
}

func TestEventWireShapes(t *testing.T) {
	t.Parallel()

	backend := testutil.NewScriptedBackend("hi")
	o := newTestOrchestrator(t, backend)
	id, sess := newTestSession(t)

	sink := &collectSink{}
	require.NoError(t, o.Run(context.Background(), id, sess, "hello", sink))

	token, err := json.Marshal(sink.events[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"token","token":"hi","done":false}`, string(token))

	done, err := json.Marshal(sink.events[len(sink.events)-1])
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(done, &decoded))
	assert.Equal(t, "done", decoded["type"])
	assert.Equal(t, true, decoded["done"])
	assert.Equal(t, "", decoded["token"])
	assert.Equal(t, id, decoded["session_id"])
	assert.NotEmpty(t, decoded["html"])
}

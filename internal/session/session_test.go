package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvasboard/canvas-chat/internal/canvas"
)

func TestSessionAppendAndTrim(t *testing.T) {
	t.Parallel()

	const maxHistory = 5
	sess := newSession(maxHistory)

	// Push well past the cap.
	for i := range 20 {
		sess.AppendUser(fmt.Sprintf("question %d", i))
		sess.AppendAssistant(fmt.Sprintf("answer %d", i), nil)
	}

	// Stored length never exceeds twice the cap.
	assert.LessOrEqual(t, sess.MessageCount(), 2*maxHistory)

	// The retained suffix is the most recent messages.
	msgs := sess.Messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, "answer 19", msgs[len(msgs)-1].Content)
	assert.Equal(t, RoleAssistant, msgs[len(msgs)-1].Role)
}

func TestSessionBuildInput(t *testing.T) {
	t.Parallel()

	t.Run("excludes the just-appended user message", func(t *testing.T) {
		t.Parallel()

		sess := newSession(10)
		sess.AppendUser("earlier question")
		sess.AppendAssistant("earlier answer", nil)
		sess.AppendUser("current question")

		in := sess.BuildInput("current question")
		require.Len(t, in.History, 2)
		assert.Equal(t, "earlier question", in.History[0].Content)
		assert.Equal(t, "earlier answer", in.History[1].Content)
	})

	t.Run("augments the message with the live context", func(t *testing.T) {
		t.Parallel()

		sess := newSession(10)
		sess.SetContext("Canvas has 1 elements: 1 rectangle(s). No text content.")

		in := sess.BuildInput("what is on the board?")
		assert.Equal(t,
			"Current canvas context: Canvas has 1 elements: 1 rectangle(s). No text content.\n\nwhat is on the board?",
			in.Augmented)
		assert.Equal(t, "Canvas has 1 elements: 1 rectangle(s). No text content.", in.Context)
	})

	t.Run("fresh session carries the default context", func(t *testing.T) {
		t.Parallel()

		sess := newSession(10)
		in := sess.BuildInput("hello")
		assert.Equal(t, DefaultContext, in.Context)
		assert.Empty(t, in.History)
	})

	t.Run("windows history to the cap", func(t *testing.T) {
		t.Parallel()

		sess := newSession(3)
		for i := range 4 {
			sess.AppendUser(fmt.Sprintf("q%d", i))
		}

		in := sess.BuildInput("unrelated")
		require.Len(t, in.History, 3)
		assert.Equal(t, "q1", in.History[0].Content)
		assert.Equal(t, "q3", in.History[2].Content)
	})

	t.Run("returned history is a copy", func(t *testing.T) {
		t.Parallel()

		sess := newSession(10)
		sess.AppendUser("original")

		in := sess.BuildInput("other")
		in.History[0].Content = "mutated"
		assert.Equal(t, "original", sess.Messages()[0].Content)
	})
}

func TestSessionContext(t *testing.T) {
	t.Parallel()

	t.Run("empty description resets to empty-canvas sentinel", func(t *testing.T) {
		t.Parallel()

		sess := newSession(10)
		sess.SetContext("")
		assert.Equal(t, canvas.EmptySummary, sess.Context())
	})

	t.Run("summarize elements installs the summary", func(t *testing.T) {
		t.Parallel()

		sess := newSession(10)
		summary := sess.SummarizeElements([]canvas.Element{
			{Type: canvas.TypeRectangle, Text: "Start"},
			{Type: canvas.TypeRectangle},
		})
		assert.Equal(t, summary, sess.Context())
		assert.Contains(t, summary, "Canvas has 2 elements")
	})

	t.Run("note drawn appends to the context", func(t *testing.T) {
		t.Parallel()

		sess := newSession(10)
		sess.SetContext("Canvas has 1 elements: 1 text(s). No text content.")
		sess.NoteDrawn("Canvas has 2 elements: 2 rectangle(s). No text content.")

		got := sess.Context()
		assert.Contains(t, got, "Canvas has 1 elements")
		assert.Contains(t, got, "Just drawn by assistant: Canvas has 2 elements")
	})
}

func TestSessionClear(t *testing.T) {
	t.Parallel()

	sess := newSession(10)
	sess.AppendUser("hello")
	sess.AppendAssistant("hi", map[string]any{"reasoning": "greeting"})
	sess.SetContext("Canvas has 3 elements: 3 text(s). No text content.")

	sess.Clear()

	assert.Zero(t, sess.MessageCount())
	assert.Equal(t, DefaultContext, sess.Context())
}

func TestSessionAssistantMeta(t *testing.T) {
	t.Parallel()

	sess := newSession(10)
	sess.AppendAssistant("visible answer", map[string]any{"reasoning": "hidden"})

	msgs := sess.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "visible answer", msgs[0].Content)
	assert.Equal(t, "hidden", msgs[0].Meta["reasoning"])
}

// Package chat drives a single conversation turn: it streams the model's
// text response through the reasoning filter, updates session state, and
// then routes the follow-up action (canvas drawing or tool dispatch).
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/canvasboard/canvas-chat/internal/canvas"
	"github.com/canvasboard/canvas-chat/internal/intent"
	"github.com/canvasboard/canvas-chat/internal/log"
	"github.com/canvasboard/canvas-chat/internal/reasoning"
	"github.com/canvasboard/canvas-chat/internal/session"
)

// Per-phase timeouts. Expiry emits an error event instead of hanging the
// connection open.
const (
	GenerateTimeout = 90 * time.Second
	CanvasTimeout   = 60 * time.Second

	// KeepAliveInterval bounds how long a suppressed reasoning stretch may
	// go without any bytes on the wire.
	KeepAliveInterval = 10 * time.Second
)

// Chunk is one fragment of streamed completion output. Thought is the
// optional side-channel reasoning payload attached to the fragment; it is
// accumulated verbatim for the assistant message and never emitted.
type Chunk struct {
	Text    string
	Thought string
}

// CompletionRequest is the input bundle for one streaming completion.
type CompletionRequest struct {
	System  string
	History []session.Message
	Message string
}

// Completer streams text completions. fn is called for each fragment in
// order; returning an error aborts the stream.
type Completer interface {
	StreamCompletion(ctx context.Context, req CompletionRequest, fn func(Chunk) error) error
}

// ElementGenerator produces the structured backend's raw textual encoding
// of canvas elements for a drawing request.
type ElementGenerator interface {
	GenerateElements(ctx context.Context, prompt string) (string, error)
}

// Renderer converts the assembled markdown response to display HTML.
type Renderer interface {
	Render(src string) (string, error)
}

// Sink receives the ordered outbound events of a turn. Send marshals and
// delivers one protocol event; Comment delivers a keep-alive comment frame
// that carries no payload.
type Sink interface {
	Send(event any) error
	Comment(text string) error
}

// Orchestrator turns one user message into an ordered sequence of outbound
// events. It is stateless across turns; all conversation state lives in
// the session.
type Orchestrator struct {
	completer Completer
	generator ElementGenerator
	renderer  Renderer
	logger    log.Logger

	generateTimeout time.Duration
	canvasTimeout   time.Duration
	keepAliveEvery  time.Duration
}

// New creates an orchestrator. All dependencies are required.
func New(completer Completer, generator ElementGenerator, renderer Renderer, logger log.Logger) (*Orchestrator, error) {
	switch {
	case completer == nil:
		return nil, errors.New("completer is required")
	case generator == nil:
		return nil, errors.New("element generator is required")
	case renderer == nil:
		return nil, errors.New("renderer is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Orchestrator{
		completer:       completer,
		generator:       generator,
		renderer:        renderer,
		logger:          logger,
		generateTimeout: GenerateTimeout,
		canvasTimeout:   CanvasTimeout,
		keepAliveEvery:  KeepAliveInterval,
	}, nil
}

// Run executes one chat turn against sess, emitting events to sink.
//
// Phase 1 streams filtered tokens and ends with a done event carrying the
// rendered response. Phase 2 emits at most one follow-up action based on
// the message's tool intent. Backend failures surface as a single error
// event; the session keeps the user message so the turn can be retried.
func (o *Orchestrator) Run(ctx context.Context, sessionID string, sess *session.Session, message string, sink Sink) error {
	verdict := intent.Classify(message)

	sess.AppendUser(message)
	input := sess.BuildInput(message)

	raw, thought, err := o.streamText(ctx, input, sink)
	if err != nil {
		msg := upstreamErrorMessage(ctx, err)
		o.logger.Error("completion stream failed", "session_id", sessionID, "error", err)
		return sink.Send(newErrorEvent(msg, sessionID))
	}

	clean := reasoning.Strip(raw)
	html, err := o.renderer.Render(clean)
	if err != nil {
		o.logger.Error("rendering response failed", "session_id", sessionID, "error", err)
		return sink.Send(newErrorEvent(err.Error(), sessionID))
	}

	var meta map[string]any
	if thought != "" {
		meta = map[string]any{"reasoning": thought}
	}
	sess.AppendAssistant(clean, meta)

	if err := sink.Send(newDoneEvent(html, sessionID)); err != nil {
		return err
	}

	return o.route(ctx, sessionID, sess, verdict, input.Context, clean, sink)
}

// streamText runs phase 1: it consumes the completion stream, feeds the
// reasoning filter, and emits a token event per visible fragment. It
// returns the full raw text and the accumulated side-channel payload.
func (o *Orchestrator) streamText(ctx context.Context, input session.Input, sink Sink) (raw, thought string, err error) {
	genCtx, cancel := context.WithTimeout(ctx, o.generateTimeout)
	defer cancel()

	var rawBuf, thoughtBuf []byte
	var filter reasoning.Filter
	lastWrite := time.Now()

	streamErr := o.completer.StreamCompletion(genCtx, CompletionRequest{
		System:  SystemPrompt(input.Context),
		History: input.History,
		Message: input.Augmented,
	}, func(c Chunk) error {
		if c.Thought != "" {
			thoughtBuf = append(thoughtBuf, c.Thought...)
		}
		if c.Text == "" {
			return nil
		}
		rawBuf = append(rawBuf, c.Text...)

		out, suppressed := filter.Feed(c.Text)
		if out != "" {
			lastWrite = time.Now()
			return sink.Send(newTokenEvent(out))
		}
		if suppressed && time.Since(lastWrite) >= o.keepAliveEvery {
			lastWrite = time.Now()
			return sink.Comment("thinking")
		}
		return nil
	})
	if streamErr != nil {
		return "", "", streamErr
	}
	return string(rawBuf), string(thoughtBuf), nil
}

// route runs phase 2: the generic draw intent goes through the structured
// element path; every other non-none intent becomes a single tool-dispatch
// event, executed by the caller.
func (o *Orchestrator) route(ctx context.Context, sessionID string, sess *session.Session, verdict intent.Intent, canvasContext, clean string, sink Sink) error {
	switch verdict.Tool {
	case intent.ToolNone:
		return nil

	case intent.ToolDraw:
		return o.drawElements(ctx, sessionID, sess, verdict.Prompt, canvasContext, sink)

	case intent.ToolTTS:
		// Speech reads the assistant's own response, not the user message.
		return sink.Send(ToolActionEvent{Type: EventToolAction, Tool: string(verdict.Tool), Text: clean})

	case intent.ToolDiagram:
		return sink.Send(ToolActionEvent{
			Type:   EventToolAction,
			Tool:   string(verdict.Tool),
			Style:  verdict.Style,
			Prompt: verdict.Prompt,
		})

	default:
		return sink.Send(ToolActionEvent{Type: EventToolAction, Tool: string(verdict.Tool), Prompt: verdict.Prompt})
	}
}

// drawElements invokes the structured backend and emits a canvas action on
// success. Malformed output is expected noise from a probabilistic
// generator: it is logged and yields no event, never a user-visible error.
func (o *Orchestrator) drawElements(ctx context.Context, sessionID string, sess *session.Session, userMessage, canvasContext string, sink Sink) error {
	drawCtx, cancel := context.WithTimeout(ctx, o.canvasTimeout)
	defer cancel()

	rawOut, err := o.generator.GenerateElements(drawCtx, CanvasPrompt(userMessage, canvasContext))
	if err != nil {
		o.logger.Warn("canvas generation failed", "session_id", sessionID, "error", err)
		return nil
	}

	parsed := canvas.Parse(rawOut)
	if parsed == nil {
		o.logger.Debug("canvas generation produced nothing to draw", "session_id", sessionID)
		return nil
	}

	for _, p := range parsed {
		if !p.Valid() {
			o.logger.Warn("element failed validation, kept as raw data",
				"session_id", sessionID, "raw", p.Raw)
		}
	}

	sess.NoteDrawn(canvas.Summarize(canvas.Flatten(parsed)))

	return sink.Send(CanvasActionEvent{Type: EventCanvasAction, Elements: parsed})
}

// upstreamErrorMessage maps a backend failure to the message carried by
// the error event, distinguishing timeouts from transport failures.
func upstreamErrorMessage(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return "generation timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	default:
		return err.Error()
	}
}

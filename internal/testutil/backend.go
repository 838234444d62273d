package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/canvasboard/canvas-chat/internal/chat"
)

// ScriptedBackend provides deterministic completions for testing. It
// matches the user message against registered patterns and streams the
// corresponding chunk script. It implements both chat backend interfaces.
//
// Thread-safe for concurrent use.
type ScriptedBackend struct {
	mu       sync.Mutex
	rules    []scriptRule
	fallback []string
	elements string
	elemErr  error
	chatErr  error

	completionCalls []CompletionCall
	elementCalls    []string
}

type scriptRule struct {
	pattern string   // substring match, lowercased
	chunks  []string // streamed in order
}

// CompletionCall records one StreamCompletion invocation.
type CompletionCall struct {
	System  string
	Message string
	History int // messages carried alongside the request
}

// NewScriptedBackend creates a backend whose unmatched messages stream the
// fallback chunks.
func NewScriptedBackend(fallback ...string) *ScriptedBackend {
	return &ScriptedBackend{fallback: fallback}
}

// Script registers a pattern whose matching messages stream the given
// chunks in order. First registered match wins.
func (b *ScriptedBackend) Script(pattern string, chunks ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rules = append(b.rules, scriptRule{pattern: strings.ToLower(pattern), chunks: chunks})
}

// FailCompletions makes every subsequent StreamCompletion return err.
func (b *ScriptedBackend) FailCompletions(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chatErr = err
}

// SetElements sets the raw text GenerateElements returns.
func (b *ScriptedBackend) SetElements(raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.elements = raw
	b.elemErr = nil
}

// FailElements makes every subsequent GenerateElements return err.
func (b *ScriptedBackend) FailElements(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.elemErr = err
}

// CompletionCalls returns a copy of the recorded completion calls.
func (b *ScriptedBackend) CompletionCalls() []CompletionCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]CompletionCall, len(b.completionCalls))
	copy(cp, b.completionCalls)
	return cp
}

// ElementCalls returns a copy of the recorded element prompts.
func (b *ScriptedBackend) ElementCalls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]string, len(b.elementCalls))
	copy(cp, b.elementCalls)
	return cp
}

// StreamCompletion implements chat.Completer.
func (b *ScriptedBackend) StreamCompletion(ctx context.Context, req chat.CompletionRequest, fn func(chat.Chunk) error) error {
	b.mu.Lock()
	b.completionCalls = append(b.completionCalls, CompletionCall{
		System:  req.System,
		Message: req.Message,
		History: len(req.History),
	})
	chunks := b.fallback
	lower := strings.ToLower(req.Message)
	for _, r := range b.rules {
		if strings.Contains(lower, r.pattern) {
			chunks = r.chunks
			break
		}
	}
	err := b.chatErr
	b.mu.Unlock()

	if err != nil {
		return err
	}
	for _, c := range chunks {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(chat.Chunk{Text: c}); err != nil {
			return err
		}
	}
	return nil
}

// GenerateElements implements chat.ElementGenerator.
func (b *ScriptedBackend) GenerateElements(ctx context.Context, prompt string) (string, error) {
	b.mu.Lock()
	b.elementCalls = append(b.elementCalls, prompt)
	raw, err := b.elements, b.elemErr
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err != nil {
		return "", err
	}
	return raw, nil
}

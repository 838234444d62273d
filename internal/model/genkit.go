// Package model wraps the Genkit client behind the chat package's
// backend interfaces.
package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/canvasboard/canvas-chat/internal/chat"
	"github.com/canvasboard/canvas-chat/internal/log"
	"github.com/canvasboard/canvas-chat/internal/session"
)

// Generation parameters for the two phases. The streaming phase wants a
// conversational register; the element phase wants near-deterministic JSON.
const (
	chatTemperature = 0.8
	chatTopP        = 0.95
	chatMaxTokens   = 4096

	structuredTemperature = 0.2
	structuredTopP        = 0.9
)

// Client talks to the configured Gemini model via Genkit. One instance is
// shared by all requests; the limiter smooths bursts before they hit
// provider quotas.
type Client struct {
	g       *genkit.Genkit
	model   string
	limiter *rate.Limiter
	logger  log.Logger
}

// NewClient wraps an initialized Genkit instance. model is the full
// provider-qualified name, e.g. "googleai/gemini-2.5-flash".
func NewClient(g *genkit.Genkit, model string, logger log.Logger) (*Client, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Client{
		g:     g,
		model: model,
		// 10 req/s sustained with a burst of 30 stays inside free-tier
		// provider quotas.
		limiter: rate.NewLimiter(10, 30),
		logger:  logger,
	}, nil
}

// StreamCompletion runs the conversational phase, forwarding each model
// chunk to fn in arrival order.
func (c *Client) StreamCompletion(ctx context.Context, req chat.CompletionRequest, fn func(chat.Chunk) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	messages := historyMessages(req.History)
	messages = append(messages, ai.NewUserMessage(ai.NewTextPart(req.Message)))

	_, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.model),
		ai.WithSystem(req.System),
		ai.WithMessages(messages...),
		ai.WithConfig(map[string]any{
			"temperature":     chatTemperature,
			"topP":            chatTopP,
			"maxOutputTokens": chatMaxTokens,
		}),
		ai.WithStreaming(func(_ context.Context, chunk *ai.ModelResponseChunk) error {
			return fn(chat.Chunk{Text: chunk.Text()})
		}),
	)
	if err != nil {
		return fmt.Errorf("generating completion: %w", err)
	}
	return nil
}

// GenerateElements runs the low-temperature structured phase and returns
// the model's raw text output. Parsing and validation happen upstream.
func (c *Client) GenerateElements(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.model),
		ai.WithPrompt(prompt),
		ai.WithConfig(map[string]any{
			"temperature": structuredTemperature,
			"topP":        structuredTopP,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("generating elements: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		c.logger.Debug("structured generation returned empty output")
	}
	return text, nil
}

// historyMessages converts stored session messages to Genkit messages,
// skipping roles the wire format does not carry.
func historyMessages(history []session.Message) []*ai.Message {
	messages := make([]*ai.Message, 0, len(history)+1)
	for _, m := range history {
		switch m.Role {
		case session.RoleUser:
			messages = append(messages, ai.NewUserMessage(ai.NewTextPart(m.Content)))
		case session.RoleAssistant:
			messages = append(messages, ai.NewModelMessage(ai.NewTextPart(m.Content)))
		}
	}
	return messages
}

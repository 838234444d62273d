// Package render converts the model's markdown response to HTML for the
// web client.
//
// Conversion is memoized by exact input text: identical fragments recur
// across stream replays, and goldmark parsing is the most expensive part
// of assembling the done event.
package render

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// cacheLimit bounds the memo map; the cache is dropped wholesale when it
// fills, which keeps the common replay case fast without an LRU.
const cacheLimit = 256

// Markdown renders markdown to HTML. Safe for concurrent use.
type Markdown struct {
	md goldmark.Markdown

	mu    sync.Mutex
	cache map[string]string
	hits  int
}

// NewMarkdown creates a renderer with GFM tables and strikethrough,
// hard line breaks, and typographic replacements — matching what chat
// models tend to emit.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.Typographer,
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
		cache: make(map[string]string),
	}
}

// Render converts src to HTML, consulting the memo cache first.
func (r *Markdown) Render(src string) (string, error) {
	r.mu.Lock()
	if out, ok := r.cache[src]; ok {
		r.hits++
		r.mu.Unlock()
		return out, nil
	}
	r.mu.Unlock()

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	out := buf.String()

	r.mu.Lock()
	if len(r.cache) >= cacheLimit {
		r.cache = make(map[string]string)
	}
	r.cache[src] = out
	r.mu.Unlock()

	return out, nil
}

// CacheHits returns how many renders were served from the memo cache.
func (r *Markdown) CacheHits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits
}

// Package reasoning strips inline reasoning-block markup from model output.
//
// Some models interleave deliberation inside <think>...</think> spans. That
// content must never reach the client: Filter suppresses it chunk by chunk
// during streaming, and Strip removes it from assembled text.
package reasoning

import (
	"regexp"
	"strings"
)

// Markers delimiting a reasoning block in model output.
const (
	OpenMarker  = "<think>"
	CloseMarker = "</think>"
)

var blockPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Strip removes every reasoning block from text and trims leading newlines
// left behind by the removal.
func Strip(text string) string {
	return strings.TrimLeft(blockPattern.ReplaceAllString(text, ""), "\n")
}

// Filter is a two-state machine that removes reasoning blocks from an
// ordered sequence of text chunks without buffering the whole response.
//
// Detection is substring-based per chunk: a marker split exactly across a
// chunk boundary is not seen. Downstream consumers rely on Strip over the
// assembled text to catch anything the streaming pass missed.
//
// The zero value is ready to use. Not safe for concurrent use.
type Filter struct {
	inside bool
}

// Feed processes one chunk and returns the text safe to emit. suppressed
// reports whether any part of the chunk was withheld, so callers can bridge
// silent stretches with keep-alives.
func (f *Filter) Feed(chunk string) (out string, suppressed bool) {
	var b strings.Builder
	rest := chunk

	for rest != "" {
		if f.inside {
			idx := strings.Index(rest, CloseMarker)
			if idx < 0 {
				// Whole remainder is reasoning payload.
				return b.String(), true
			}
			f.inside = false
			suppressed = true
			rest = rest[idx+len(CloseMarker):]
			// The suffix is emitted unmodified, but only when it carries
			// visible content.
			if strings.TrimSpace(rest) == "" {
				return b.String(), true
			}
			continue
		}

		idx := strings.Index(rest, OpenMarker)
		if idx < 0 {
			b.WriteString(rest)
			return b.String(), suppressed
		}
		// Emit the prefix before the marker, then enter the block.
		b.WriteString(rest[:idx])
		f.inside = true
		suppressed = true
		rest = rest[idx+len(OpenMarker):]
	}

	return b.String(), suppressed
}

// Inside reports whether the filter is currently suppressing a block.
func (f *Filter) Inside() bool {
	return f.inside
}

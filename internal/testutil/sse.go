// Package testutil holds shared test helpers: an SSE stream parser for
// the data-only wire protocol and a scripted chat backend.
package testutil

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"
)

// SSEEvent is one parsed frame of the chat stream. Data frames carry a
// JSON payload whose "type" field discriminates the event; comment frames
// (keep-alives) carry only the comment text.
type SSEEvent struct {
	Type    string // JSON "type" field; empty for comments
	Data    string // raw JSON payload (multi-line joined with \n)
	Comment string // comment text for keep-alive frames
}

// IsComment reports whether the frame is a keep-alive comment.
func (e SSEEvent) IsComment() bool {
	return e.Comment != ""
}

// ParseSSEEvents parses a data-only SSE stream into ordered frames.
//
// The protocol uses no "event:" lines: every payload is a "data:" line
// holding JSON with a "type" discriminator, and keep-alives are comment
// lines starting with ":". An empty line terminates each frame.
func ParseSSEEvents(t *testing.T, body string) []SSEEvent {
	t.Helper()

	var events []SSEEvent
	var dataLines []string
	lineNum := 0

	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))

		case strings.HasPrefix(line, ":"):
			events = append(events, SSEEvent{
				Comment: strings.TrimSpace(strings.TrimPrefix(line, ":")),
			})

		case line == "":
			if len(dataLines) == 0 {
				continue
			}
			data := strings.Join(dataLines, "\n")
			events = append(events, SSEEvent{
				Type: eventType(t, data, lineNum),
				Data: data,
			})
			dataLines = nil

		default:
			t.Fatalf("SSE parse error at line %d: unexpected line %q", lineNum, line)
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("SSE scan error: %v", err)
	}
	if len(dataLines) > 0 {
		t.Fatalf("SSE stream ended without terminating frame (missing empty line)")
	}

	return events
}

// eventType extracts the "type" discriminator from a JSON payload.
func eventType(t *testing.T, data string, lineNum int) string {
	t.Helper()

	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(data), &envelope); err != nil {
		t.Fatalf("SSE parse error near line %d: data is not JSON: %v (%q)", lineNum, err, data)
	}
	if envelope.Type == "" {
		t.Fatalf("SSE parse error near line %d: payload missing type field: %q", lineNum, data)
	}
	return envelope.Type
}

// DecodeEvent unmarshals an event's payload into out.
func DecodeEvent(t *testing.T, e SSEEvent, out any) {
	t.Helper()
	if err := json.Unmarshal([]byte(e.Data), out); err != nil {
		t.Fatalf("decoding %s event: %v (%q)", e.Type, err, e.Data)
	}
}

// FindEvent returns the first event of the given type, or nil.
func FindEvent(events []SSEEvent, eventType string) *SSEEvent {
	for i := range events {
		if events[i].Type == eventType {
			return &events[i]
		}
	}
	return nil
}

// FindAllEvents returns every event of the given type, in order.
func FindAllEvents(events []SSEEvent, eventType string) []SSEEvent {
	var found []SSEEvent
	for _, e := range events {
		if e.Type == eventType {
			found = append(found, e)
		}
	}
	return found
}

// JoinTokens concatenates the token payloads of every token event, which
// reconstructs the visible text a browser would have displayed.
func JoinTokens(t *testing.T, events []SSEEvent) string {
	t.Helper()

	var sb strings.Builder
	for _, e := range FindAllEvents(events, "token") {
		var payload struct {
			Token string `json:"token"`
		}
		DecodeEvent(t, e, &payload)
		sb.WriteString(payload.Token)
	}
	return sb.String()
}

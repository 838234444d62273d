package canvas

import (
	"encoding/json"
	"strings"

	"github.com/canvasboard/canvas-chat/internal/reasoning"
)

// Parse turns a raw text blob from the structured generation backend into
// parsed elements. It returns nil when there is nothing to draw: decode
// failure and an empty list both signal "no action" rather than an error,
// since the backend is best-effort.
//
// Gates, in order: strip reasoning markup (defense in depth — this path is
// not streamed but the model may still think out loud), unwrap a single
// fenced code block, decode as a JSON array, validate each item.
func Parse(raw string) []ParsedElement {
	cleaned := strings.TrimSpace(reasoning.Strip(raw))
	cleaned = stripFence(cleaned)
	if cleaned == "" {
		return nil
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil
	}
	if len(items) == 0 {
		return nil
	}

	parsed := make([]ParsedElement, 0, len(items))
	for _, item := range items {
		if el, ok := decodeElement(item); ok {
			parsed = append(parsed, ParsedElement{Element: el})
		} else {
			parsed = append(parsed, ParsedElement{Raw: item})
		}
	}
	return parsed
}

// stripFence removes one leading/trailing markdown fence wrapper, which the
// generator adds despite being told not to.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = s[3:]
	// Drop the info string ("json", "javascript", ...) up to the newline.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "" || isFenceInfo(first) {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isFenceInfo(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// decodeElement validates one decoded item against the Element shape and
// normalizes it, filling default position and size. Returns false when the
// item does not qualify; callers keep the raw map instead.
func decodeElement(item map[string]any) (*Element, bool) {
	t, ok := item["type"].(string)
	if !ok || !ValidType(t) {
		return nil, false
	}

	el := &Element{
		Type:   t,
		X:      DefaultX,
		Y:      DefaultY,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}

	for key, dst := range map[string]*float64{
		"x": &el.X, "y": &el.Y, "width": &el.Width, "height": &el.Height,
	} {
		v, present := item[key]
		if !present {
			continue
		}
		f, isNum := v.(float64)
		if !isNum {
			return nil, false
		}
		*dst = f
	}

	for key, dst := range map[string]*string{
		"id": &el.ID, "text": &el.Text,
		"backgroundColor": &el.BackgroundColor, "strokeColor": &el.StrokeColor,
		"startId": &el.StartID, "endId": &el.EndID,
	} {
		v, present := item[key]
		if !present {
			continue
		}
		s, isStr := v.(string)
		if !isStr {
			return nil, false
		}
		*dst = s
	}

	return el, true
}

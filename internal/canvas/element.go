// Package canvas models whiteboard elements and parses the structured
// generation backend's output into them.
//
// The backend is a probabilistic text generator, not a strict schema
// emitter, so parsing is best-effort: items that fail validation are kept
// as opaque raw data rather than discarded.
package canvas

import "encoding/json"

// Element types supported by the whiteboard.
const (
	TypeRectangle = "rectangle"
	TypeEllipse   = "ellipse"
	TypeDiamond   = "diamond"
	TypeText      = "text"
	TypeArrow     = "arrow"
	TypeLine      = "line"
)

// Default position and size filled in when the generator omits them.
const (
	DefaultX      = 100
	DefaultY      = 100
	DefaultWidth  = 200
	DefaultHeight = 100
)

// validTypes is the closed enumeration of element types.
var validTypes = map[string]bool{
	TypeRectangle: true,
	TypeEllipse:   true,
	TypeDiamond:   true,
	TypeText:      true,
	TypeArrow:     true,
	TypeLine:      true,
}

// Element is a single visual element on the canvas.
//
// StartID and EndID are only meaningful for arrows, where they reference
// the ids of the connected shapes.
type Element struct {
	ID              string  `json:"id,omitempty"`
	Type            string  `json:"type"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	Text            string  `json:"text,omitempty"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	StrokeColor     string  `json:"strokeColor,omitempty"`
	StartID         string  `json:"startId,omitempty"`
	EndID           string  `json:"endId,omitempty"`
}

// ValidType reports whether t is one of the supported element types.
func ValidType(t string) bool {
	return validTypes[t]
}

// ParsedElement is the per-item result of parsing generator output:
// either a validated, normalized Element or the raw decoded map when
// validation failed. Exactly one of the two fields is set.
type ParsedElement struct {
	Element *Element
	Raw     map[string]any
}

// Valid reports whether the item passed shape validation.
func (p ParsedElement) Valid() bool {
	return p.Element != nil
}

// MarshalJSON emits the normalized element when valid, otherwise the raw
// data as-is, so partial generator output still reaches the client.
func (p ParsedElement) MarshalJSON() ([]byte, error) {
	if p.Element != nil {
		return json.Marshal(p.Element)
	}
	return json.Marshal(p.Raw)
}

// Flatten converts parsed items to plain Elements for summarization.
// Raw items contribute whatever type and text strings they carry; a raw
// item without a usable type is reported as "unknown".
func Flatten(parsed []ParsedElement) []Element {
	out := make([]Element, 0, len(parsed))
	for _, p := range parsed {
		if p.Element != nil {
			out = append(out, *p.Element)
			continue
		}
		el := Element{Type: "unknown"}
		if t, ok := p.Raw["type"].(string); ok && t != "" {
			el.Type = t
		}
		if txt, ok := p.Raw["text"].(string); ok {
			el.Text = txt
		}
		out = append(out, el)
	}
	return out
}

// Package intent classifies a user utterance into one of a fixed set of
// downstream tool actions.
//
// Classification is case-insensitive substring containment against static
// keyword tables, evaluated in a fixed priority order. Classify is a pure
// function: same input, same verdict.
package intent

import "strings"

// Tool identifies the downstream capability a message requests.
type Tool string

// Tool variants. Exactly one is selected per utterance.
const (
	ToolNone    Tool = "none"
	ToolDiagram Tool = "diagram"
	ToolImage   Tool = "image"
	ToolSketch  Tool = "sketch"
	ToolOCR     Tool = "ocr"
	ToolTTS     Tool = "tts"
	ToolDraw    Tool = "draw"
)

// Intent is the classifier's verdict. Style is set only for ToolDiagram;
// Prompt carries the raw utterance for tools that need it.
type Intent struct {
	Tool   Tool
	Style  string
	Prompt string
}

// None reports whether no tool was requested.
func (i Intent) None() bool {
	return i.Tool == ToolNone
}

// rule pairs a keyword set with the intent it produces. Rules are evaluated
// in slice order; the first rule with a matching keyword wins.
type rule struct {
	keywords []string
	build    func(text string) Intent
}

// rules is the priority-ordered classification table. Specific tool tiers
// come first so that e.g. "sketch a cat" resolves to Sketch even though
// "sketch" also appears in the generic draw keywords.
var rules = []rule{
	{
		keywords: []string{
			"diagram", "flowchart", "flow chart", "mindmap", "mind map",
			"org chart", "sequence diagram", "class diagram", "er diagram", "uml",
		},
		build: func(text string) Intent {
			return Intent{Tool: ToolDiagram, Style: diagramStyle(text), Prompt: text}
		},
	},
	{
		keywords: []string{
			"generate an image", "generate image", "image of", "picture of",
			"photo of", "render an image", "create an image",
		},
		build: func(text string) Intent { return Intent{Tool: ToolImage, Prompt: text} },
	},
	{
		keywords: []string{"sketch"},
		build:    func(text string) Intent { return Intent{Tool: ToolSketch, Prompt: text} },
	},
	{
		keywords: []string{
			"ocr", "read the text", "extract text", "recognize text",
			"recognise text", "transcribe",
		},
		build: func(text string) Intent { return Intent{Tool: ToolOCR, Prompt: text} },
	},
	{
		keywords: []string{
			"read aloud", "read it aloud", "read this out", "speak",
			"say it", "text to speech",
		},
		build: func(text string) Intent { return Intent{Tool: ToolTTS, Prompt: text} },
	},
	{
		keywords: drawKeywords,
		build:    func(text string) Intent { return Intent{Tool: ToolDraw, Prompt: text} },
	},
}

// drawKeywords is the generic drawing-intent fallback tier.
var drawKeywords = []string{
	"draw", "create", "add", "place", "make", "build", "put", "insert",
	"chart", "graph", "box", "circle", "rectangle", "arrow", "shape",
	"ellipse", "diamond", "layout", "wireframe", "design", "sticky", "note",
	"architecture", "schema", "organize", "arrange", "connect", "link",
}

// styleTable maps diagram keywords to styles, first match wins.
var styleTable = []struct {
	keyword string
	style   string
}{
	{"flowchart", "flowchart"},
	{"flow chart", "flowchart"},
	{"mindmap", "mindmap"},
	{"mind map", "mindmap"},
	{"sequence", "sequence"},
	{"class diagram", "class"},
	{"er diagram", "er"},
	{"org chart", "orgchart"},
	{"uml", "uml"},
}

// DefaultDiagramStyle is used when no style keyword matches.
const DefaultDiagramStyle = "flowchart"

// Classify maps a user utterance to a tool intent.
func Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.build(text)
			}
		}
	}
	return Intent{Tool: ToolNone}
}

func diagramStyle(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range styleTable {
		if strings.Contains(lower, entry.keyword) {
			return entry.style
		}
	}
	return DefaultDiagramStyle
}

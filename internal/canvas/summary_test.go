package canvas

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("empty board", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, EmptySummary, Summarize(nil))
		assert.Equal(t, EmptySummary, Summarize([]Element{}))
	})

	t.Run("two rectangles one labeled", func(t *testing.T) {
		t.Parallel()

		got := Summarize([]Element{
			{Type: TypeRectangle, Text: "Start"},
			{Type: TypeRectangle},
		})
		assert.Equal(t,
			"Canvas has 2 elements: 2 rectangle(s).\nText content found:\n- rectangle: \"Start\"",
			got)
	})

	t.Run("no text content note", func(t *testing.T) {
		t.Parallel()

		got := Summarize([]Element{{Type: TypeEllipse}, {Type: TypeArrow}})
		assert.Equal(t, "Canvas has 2 elements: 1 ellipse(s), 1 arrow(s). No text content.", got)
	})

	t.Run("type counts appear in first-seen order", func(t *testing.T) {
		t.Parallel()

		got := Summarize([]Element{
			{Type: TypeText}, {Type: TypeRectangle}, {Type: TypeText},
		})
		assert.Contains(t, got, "2 text(s), 1 rectangle(s)")
	})

	t.Run("deterministic output", func(t *testing.T) {
		t.Parallel()

		elements := []Element{
			{Type: TypeRectangle, Text: "a"},
			{Type: TypeDiamond, Text: "b"},
			{Type: TypeRectangle},
		}
		first := Summarize(elements)
		for range 10 {
			assert.Equal(t, first, Summarize(elements))
		}
	})

	t.Run("missing type counts as unknown", func(t *testing.T) {
		t.Parallel()

		got := Summarize([]Element{{}})
		assert.Contains(t, got, "1 unknown(s)")
	})

	t.Run("long labels are omitted", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("x", summaryMaxLabelLen)
		got := Summarize([]Element{{Type: TypeText, Text: long}})
		assert.NotContains(t, got, long)
		assert.Contains(t, got, "No text content.")
	})

	t.Run("total count exceeds processing cap", func(t *testing.T) {
		t.Parallel()

		elements := make([]Element, summaryMaxElements+25)
		for i := range elements {
			elements[i] = Element{Type: TypeRectangle, Text: fmt.Sprintf("label %d", i)}
		}
		got := Summarize(elements)
		// The headline reports the full board size.
		assert.Contains(t, got, fmt.Sprintf("Canvas has %d elements", len(elements)))
		// Only the first counted batch contributes per-type tallies.
		assert.Contains(t, got, fmt.Sprintf("%d rectangle(s)", summaryMaxElements))
		// Labels are capped too.
		assert.Equal(t, summaryMaxLabels, strings.Count(got, "- rectangle:"))
	})
}

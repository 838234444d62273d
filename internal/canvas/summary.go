package canvas

import (
	"fmt"
	"strings"
)

// Summary caps. Processing is bounded so a huge board costs constant CPU.
const (
	summaryMaxElements = 50
	summaryMaxLabels   = 20
	summaryMaxLabelLen = 200
)

// EmptySummary is the sentinel returned when there is nothing on the board.
const EmptySummary = "Canvas is empty."

// Summarize renders a deterministic textual description of the elements:
// a total with per-type counts, followed by the text labels found (or a
// "no text content" note). Type counts appear in first-seen order, so the
// same element list always yields byte-identical output.
func Summarize(elements []Element) string {
	if len(elements) == 0 {
		return EmptySummary
	}

	counts := make(map[string]int)
	var order []string
	var labels []string

	capped := elements
	if len(capped) > summaryMaxElements {
		capped = capped[:summaryMaxElements]
	}
	for _, el := range capped {
		t := el.Type
		if t == "" {
			t = "unknown"
		}
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++

		text := strings.TrimSpace(el.Text)
		if text != "" && len(text) < summaryMaxLabelLen && len(labels) < summaryMaxLabels {
			labels = append(labels, fmt.Sprintf("- %s: %q", t, text))
		}
	}

	parts := make([]string, 0, len(order))
	for _, t := range order {
		parts = append(parts, fmt.Sprintf("%d %s(s)", counts[t], t))
	}
	countsStr := strings.Join(parts, ", ")

	if len(labels) == 0 {
		return fmt.Sprintf("Canvas has %d elements: %s. No text content.", len(elements), countsStr)
	}
	return fmt.Sprintf("Canvas has %d elements: %s.\nText content found:\n%s",
		len(elements), countsStr, strings.Join(labels, "\n"))
}

// Package signature derives the dedup key that identifies "the same
// configured item" inside one cart partition. Two adds with the same logical
// selections must land on the same key regardless of the order the customer
// ticked the multi-select options in.
package signature

import (
	"sort"
	"strings"

	"foodorder/internal/domain"
)

const (
	noSize = "noSize"
	noBase = "noBase"
	noTop  = "noTop"
	noAdd  = "noAdd"
	noNote = "noNote"
)

// Compute builds the stable signature for an item plus its selections.
// Multi-select labels are sorted before joining so selection order never
// changes the result; the note participates trimmed, so differing notes keep
// lines apart.
func Compute(itemID string, sel domain.Selections) string {
	parts := []string{
		itemID,
		optionLabel(sel.Size, noSize),
		optionLabel(sel.Base, noBase),
		joinedLabels(sel.Toppings, noTop),
		joinedLabels(sel.AddOns, noAdd),
		noteOrSentinel(sel.Note),
	}
	return strings.Join(parts, "|")
}

func optionLabel(o *domain.Option, sentinel string) string {
	if o == nil || o.Label == "" {
		return sentinel
	}
	return o.Label
}

func joinedLabels(opts []domain.Option, sentinel string) string {
	if len(opts) == 0 {
		return sentinel
	}
	labels := make([]string, 0, len(opts))
	for _, o := range opts {
		labels = append(labels, o.Label)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}

func noteOrSentinel(note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return noNote
	}
	return note
}

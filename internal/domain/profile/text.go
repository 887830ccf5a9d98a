// Package profile builds and persists preference embeddings for
// volunteers and events.
package profile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/voluntree/voluntree/internal/domain/model"
)

// Weights maps interaction types to their profile-signal weight.
// A nil map falls back to the built-in weights on model.InteractionType.
type Weights map[model.InteractionType]float64

func (w Weights) weightFor(t model.InteractionType) float64 {
	if w == nil {
		return t.Weight()
	}
	return w[t]
}

// VolunteerText assembles the single descriptive text embedded for a
// volunteer. Segments are joined by ". " and empty segments dropped:
//
//	<name>. Interests: a, b. Skills: a, b.
//	Past events: title: description (CATEGORY). ….
//	Recent activity: type (weight: W), …
func VolunteerText(v model.Volunteer, pastEvents []model.Event, interactions []model.Interaction, w Weights) string {
	segments := make([]string, 0, 5)
	segments = append(segments, v.Name)

	if len(v.Interests) > 0 {
		segments = append(segments, "Interests: "+strings.Join(v.Interests, ", "))
	}
	if len(v.Skills) > 0 {
		segments = append(segments, "Skills: "+strings.Join(v.Skills, ", "))
	}

	if len(pastEvents) > 0 {
		rendered := make([]string, 0, len(pastEvents))
		for _, e := range pastEvents {
			rendered = append(rendered, fmt.Sprintf("%s: %s (%s)", e.Title, e.Description, e.Category))
		}
		segments = append(segments, "Past events: "+strings.Join(rendered, ". "))
	}

	if len(interactions) > 0 {
		rendered := make([]string, 0, len(interactions))
		for _, in := range interactions {
			rendered = append(rendered, fmt.Sprintf("%s (weight: %s)", in.Type, formatWeight(w.weightFor(in.Type))))
		}
		segments = append(segments, "Recent activity: "+strings.Join(rendered, ", "))
	}

	// Drop empty segments (e.g. an unnamed volunteer).
	kept := segments[:0]
	for _, s := range segments {
		if s != "" {
			kept = append(kept, s)
		}
	}

	return strings.Join(kept, ". ")
}

// EventText assembles the single descriptive text embedded for an
// event. An absent description is rendered as an empty string, the
// whole text is whitespace-trimmed.
func EventText(e model.Event) string {
	text := fmt.Sprintf("%s. %s. Category: %s. Location: %s", e.Title, e.Description, e.Category, e.PlaceName)
	return strings.TrimSpace(text)
}

// formatWeight renders weights without trailing zeros: 3, 2, 1, 0.5.
func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/voluntree/voluntree/internal/domain/model"
)

// Recommendation is one ranked entry of a recommendation result.
type Recommendation struct {
	Event model.Event `json:"event"`
	Score float64     `json:"score"`
}

// Filters narrows the candidate set before scoring. Zero values mean
// the corresponding filter is not applied.
type Filters struct {
	From     time.Time      // date-range start
	Until    time.Time      // date-range end
	Location string         // case-insensitive substring on place name
	Category model.Category // exact match
}

// Result is the shape consumed by the presentation layer: a ranked
// list plus an optional human-readable message for cold-start states.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	Message         string           `json:"message,omitempty"`
	BasedOnEvents   int              `json:"based_on_events,omitempty"`
}

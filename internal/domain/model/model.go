// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of event topics.
type Category string

// Event categories.
const (
	CategoryAnimals     Category = "ANIMALS"
	CategoryEnvironment Category = "ENVIRONMENT"
	CategoryEducation   Category = "EDUCATION"
	CategoryHealth      Category = "HEALTH"
	CategoryCulture     Category = "CULTURE"
	CategorySport       Category = "SPORT"
	CategoryOther       Category = "OTHER"
)

// Categories lists every valid category.
func Categories() []Category {
	return []Category{
		CategoryAnimals,
		CategoryEnvironment,
		CategoryEducation,
		CategoryHealth,
		CategoryCulture,
		CategorySport,
		CategoryOther,
	}
}

// ParseCategory normalizes and validates a category string.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

// InteractionType classifies volunteer-event interactions.
type InteractionType string

// Interaction types, weakest to strongest signal.
const (
	InteractionViewed     InteractionType = "viewed"
	InteractionInterested InteractionType = "interested"
	InteractionRegistered InteractionType = "registered"
	InteractionCompleted  InteractionType = "completed"
)

// Weight returns the fixed relative weight for this interaction type,
// used as an input signal when assembling a volunteer profile.
func (t InteractionType) Weight() float64 {
	switch t {
	case InteractionCompleted:
		return 3
	case InteractionRegistered:
		return 2
	case InteractionInterested:
		return 1
	case InteractionViewed:
		return 0.5
	default:
		return 0
	}
}

// ParseInteractionType validates an interaction type string.
func ParseInteractionType(s string) (InteractionType, error) {
	t := InteractionType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case InteractionViewed, InteractionInterested, InteractionRegistered, InteractionCompleted:
		return t, nil
	default:
		return "", fmt.Errorf("unknown interaction type: %q", s)
	}
}

// SubmissionStatus tracks a volunteer's application to an event.
type SubmissionStatus string

// Submission statuses.
const (
	SubmissionPending   SubmissionStatus = "PENDING"
	SubmissionAccepted  SubmissionStatus = "ACCEPTED"
	SubmissionRejected  SubmissionStatus = "REJECTED"
	SubmissionCompleted SubmissionStatus = "COMPLETED"
)

// Attended reports whether this status counts as realized attendance.
func (s SubmissionStatus) Attended() bool {
	return s == SubmissionAccepted || s == SubmissionCompleted
}

// ParseSubmissionStatus validates a submission status string.
func ParseSubmissionStatus(s string) (SubmissionStatus, error) {
	st := SubmissionStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case SubmissionPending, SubmissionAccepted, SubmissionRejected, SubmissionCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("unknown submission status: %q", s)
	}
}

// Volunteer holds a volunteer's profile and, once computed, their
// preference embedding. The embedding lives in the same vector space
// as event embeddings; it is nil until the profile builder runs.
type Volunteer struct {
	ID                  string
	Name                string
	Interests           []string
	Skills              []string
	PastEvents          []string // event ids, profile-text input only
	PreferenceEmbedding []float64
}

// Event represents a volunteering event. Embedding is nil until the
// event profile builder runs.
type Event struct {
	ID          string
	Title       string
	Description string // may be empty
	Category    Category
	PlaceName   string
	StartDate   time.Time
	EndDate     time.Time
	Embedding   []float64
}

// Interaction is one row of the append-only interaction log.
type Interaction struct {
	VolunteerID string
	EventID     string
	Type        InteractionType
	CreatedAt   time.Time
}

// Submission associates a volunteer with an event and a status.
// Owned by the wider platform; the recommender only reads it.
type Submission struct {
	VolunteerID string
	EventID     string
	Status      SubmissionStatus
}

// JobKind identifies what an embed job rebuilds.
type JobKind string

// Embed job kinds.
const (
	JobVolunteer JobKind = "volunteer"
	JobEvent     JobKind = "event"
)

// EmbedJob is the payload flowing through the rebuild queue.
type EmbedJob struct {
	JobID    string // unique id for coalescing bookkeeping
	Kind     JobKind
	TargetID string
}

// Key returns the coalescing key: one pending rebuild per target.
func (j EmbedJob) Key() string {
	return string(j.Kind) + ":" + j.TargetID
}

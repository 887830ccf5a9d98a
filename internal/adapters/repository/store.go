// Package repository defines storage access for volunteers, events,
// interactions and submissions, plus errors.
package repository

import (
	"context"

	"github.com/voluntree/voluntree/internal/domain/model"
	"github.com/voluntree/voluntree/internal/domain/recommend"
)

// Counts summarizes stored entities for stats and metrics.
type Counts struct {
	Volunteers   int
	Events       int
	Interactions int
	Submissions  int
}

// Store provides read/write access to recommendation state. The
// interaction log is append-only; embeddings are whole-vector
// overwrites with last-writer-wins semantics.
type Store interface {
	// Volunteers.
	PutVolunteer(ctx context.Context, v model.Volunteer) error
	Volunteer(ctx context.Context, id string) (model.Volunteer, error)
	// SetVolunteerEmbedding overwrites the preference embedding.
	// Returns ErrNotFound for an unknown volunteer.
	SetVolunteerEmbedding(ctx context.Context, id string, embedding []float64) error

	// Events.
	PutEvent(ctx context.Context, e model.Event) error
	Event(ctx context.Context, id string) (model.Event, error)
	// EventsByIDs resolves ids to events, silently skipping missing ones.
	EventsByIDs(ctx context.Context, ids []string) ([]model.Event, error)
	// Candidates returns embedded events matching the query, ordered by
	// start date asc then id asc, capped at q.Limit when positive.
	Candidates(ctx context.Context, q recommend.CandidateQuery) ([]model.Event, error)
	SetEventEmbedding(ctx context.Context, id string, embedding []float64) error

	// Interactions (append-only log).
	AppendInteraction(ctx context.Context, in model.Interaction) error
	// RecentInteractions returns up to limit interactions for the
	// volunteer, newest first.
	RecentInteractions(ctx context.Context, volunteerID string, limit int) ([]model.Interaction, error)

	// Submissions.
	PutSubmission(ctx context.Context, s model.Submission) error
	// AttendedEventIDs returns ids of events the volunteer attended
	// (accepted or completed submissions), in deterministic order.
	AttendedEventIDs(ctx context.Context, volunteerID string) ([]string, error)

	// Counts reports entity totals.
	Counts(ctx context.Context) Counts
}

package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/voluntree/voluntree/internal/domain/model"
	"github.com/voluntree/voluntree/pkg/logger"
	"github.com/voluntree/voluntree/pkg/metrics"
)

// Default builder configuration constants.
const (
	defaultRecentInteractionLimit = 50
)

// VolunteerStore provides volunteer reads and embedding writes.
type VolunteerStore interface {
	Volunteer(ctx context.Context, id string) (model.Volunteer, error)
	SetVolunteerEmbedding(ctx context.Context, id string, embedding []float64) error
}

// EventStore provides event reads and embedding writes.
type EventStore interface {
	Event(ctx context.Context, id string) (model.Event, error)
	// EventsByIDs resolves ids to events, silently skipping any that
	// no longer exist.
	EventsByIDs(ctx context.Context, ids []string) ([]model.Event, error)
	SetEventEmbedding(ctx context.Context, id string, embedding []float64) error
}

// InteractionSource provides the volunteer's recent interaction log,
// newest first.
type InteractionSource interface {
	RecentInteractions(ctx context.Context, volunteerID string, limit int) ([]model.Interaction, error)
}

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Builder produces and persists preference embeddings. It assembles a
// descriptive text from stored profile data, sends it to the embedding
// provider, and overwrites the stored vector. Re-running a build has
// no cumulative side effect beyond the overwrite.
type Builder struct {
	volunteers   VolunteerStore
	events       EventStore
	interactions InteractionSource
	embedder     Embedder

	recentLimit int
	weights     Weights

	logger logger.Logger
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithRecentInteractionLimit bounds how many recent interactions feed
// the volunteer profile text.
func WithRecentInteractionLimit(limit int) Option {
	return func(b *Builder) {
		if limit > 0 {
			b.recentLimit = limit
		}
	}
}

// WithWeights overrides the interaction weights used in profile text.
func WithWeights(w Weights) Option {
	return func(b *Builder) {
		if w != nil {
			b.weights = w
		}
	}
}

// WithLogger sets a custom logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder with the given dependencies.
func NewBuilder(volunteers VolunteerStore, events EventStore, interactions InteractionSource, embedder Embedder, opts ...Option) *Builder {
	b := &Builder{
		volunteers:   volunteers,
		events:       events,
		interactions: interactions,
		embedder:     embedder,
		recentLimit:  defaultRecentInteractionLimit,
		logger:       logger.Get().Named("profile"),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// BuildVolunteer computes and persists the preference embedding for a
// volunteer. Missing past events are skipped; a missing volunteer or a
// provider failure is returned unchanged.
func (b *Builder) BuildVolunteer(ctx context.Context, id string) error {
	start := time.Now()

	v, err := b.volunteers.Volunteer(ctx, id)
	if err != nil {
		metrics.RecordEmbeddingBuildFailure(string(model.JobVolunteer))
		return fmt.Errorf("load volunteer %s: %w", id, err)
	}

	interactions, err := b.interactions.RecentInteractions(ctx, id, b.recentLimit)
	if err != nil {
		metrics.RecordEmbeddingBuildFailure(string(model.JobVolunteer))
		return fmt.Errorf("load interactions for %s: %w", id, err)
	}

	var pastEvents []model.Event
	if len(v.PastEvents) > 0 {
		pastEvents, err = b.events.EventsByIDs(ctx, v.PastEvents)
		if err != nil {
			metrics.RecordEmbeddingBuildFailure(string(model.JobVolunteer))
			return fmt.Errorf("load past events for %s: %w", id, err)
		}
	}

	text := VolunteerText(v, pastEvents, interactions, b.weights)

	embedding, err := b.embedder.Embed(ctx, text)
	if err != nil {
		metrics.RecordEmbeddingBuildFailure(string(model.JobVolunteer))
		return fmt.Errorf("embed volunteer %s: %w", id, err)
	}

	if err := b.volunteers.SetVolunteerEmbedding(ctx, id, embedding); err != nil {
		metrics.RecordEmbeddingBuildFailure(string(model.JobVolunteer))
		return fmt.Errorf("persist volunteer embedding %s: %w", id, err)
	}

	metrics.RecordEmbeddingBuilt(string(model.JobVolunteer))
	b.logger.Info(ctx, "volunteer embedding built",
		logger.String("volunteerID", id),
		logger.Int("dimensions", len(embedding)),
		logger.Int("interactions", len(interactions)),
		logger.Float64("elapsedMs", float64(time.Since(start).Milliseconds())),
	)

	return nil
}

// BuildEvent computes and persists the embedding for an event.
func (b *Builder) BuildEvent(ctx context.Context, id string) error {
	start := time.Now()

	e, err := b.events.Event(ctx, id)
	if err != nil {
		metrics.RecordEmbeddingBuildFailure(string(model.JobEvent))
		return fmt.Errorf("load event %s: %w", id, err)
	}

	text := EventText(e)

	embedding, err := b.embedder.Embed(ctx, text)
	if err != nil {
		metrics.RecordEmbeddingBuildFailure(string(model.JobEvent))
		return fmt.Errorf("embed event %s: %w", id, err)
	}

	if err := b.events.SetEventEmbedding(ctx, id, embedding); err != nil {
		metrics.RecordEmbeddingBuildFailure(string(model.JobEvent))
		return fmt.Errorf("persist event embedding %s: %w", id, err)
	}

	metrics.RecordEmbeddingBuilt(string(model.JobEvent))
	b.logger.Info(ctx, "event embedding built",
		logger.String("eventID", id),
		logger.Int("dimensions", len(embedding)),
		logger.Float64("elapsedMs", float64(time.Since(start).Milliseconds())),
	)

	return nil
}

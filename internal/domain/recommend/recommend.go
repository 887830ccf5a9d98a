// Package recommend ranks candidate events for a volunteer by cosine
// similarity between the volunteer's preference signal and event
// embeddings. The engine is read-only: it never mutates volunteer or
// event data.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/voluntree/voluntree/internal/domain/model"
	"github.com/voluntree/voluntree/internal/domain/types"
	"github.com/voluntree/voluntree/internal/domain/vector"
	"github.com/voluntree/voluntree/pkg/logger"
	"github.com/voluntree/voluntree/pkg/metrics"
)

// Default engine configuration constants.
const (
	// DefaultLimit applies when the caller does not specify a result limit.
	DefaultLimit = 10

	// defaultCandidateMultiplier over-fetches candidates before scoring,
	// since filtering is independent of relevance.
	defaultCandidateMultiplier = 3
)

// Cold-start and empty-result messages surfaced to the caller. These
// states are normal, not failures.
const (
	MsgNoAttendedEvents = "No attended events found. Attend some events first to get personalized recommendations."
	MsgNoEmbeddings     = "Event embeddings not generated. Please generate embeddings first."
	MsgNoMatches        = "No new events found matching your criteria."
)

// VolunteerSource provides volunteer lookups.
type VolunteerSource interface {
	Volunteer(ctx context.Context, id string) (model.Volunteer, error)
}

// CandidateQuery narrows the candidate retrieval.
type CandidateQuery struct {
	// NotBefore keeps only events starting at or after this instant.
	NotBefore time.Time
	// ExcludeIDs drops events the volunteer already attended.
	ExcludeIDs []string
	// Filters are the caller-supplied date/location/category filters.
	Filters types.Filters
	// Limit caps retrieval; zero means no cap.
	Limit int
}

// EventSource provides event lookups and filtered candidate retrieval.
// Candidates must return only events with a computed embedding, in a
// deterministic order (start date asc, then id asc).
type EventSource interface {
	EventsByIDs(ctx context.Context, ids []string) ([]model.Event, error)
	Candidates(ctx context.Context, q CandidateQuery) ([]model.Event, error)
}

// SubmissionSource reports which events a volunteer has attended
// (submissions in an accepted or completed status).
type SubmissionSource interface {
	AttendedEventIDs(ctx context.Context, volunteerID string) ([]string, error)
}

// Engine computes recommendations.
type Engine struct {
	volunteers  VolunteerSource
	events      EventSource
	submissions SubmissionSource

	candidateMultiplier int
	now                 func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCandidateMultiplier sets the over-fetch multiple of the result
// limit used during candidate retrieval.
func WithCandidateMultiplier(m int) Option {
	return func(e *Engine) {
		if m > 0 {
			e.candidateMultiplier = m
		}
	}
}

// WithNow sets the clock used to cut off past events.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an Engine with the given dependencies.
func NewEngine(volunteers VolunteerSource, events EventSource, submissions SubmissionSource, opts ...Option) *Engine {
	e := &Engine{
		volunteers:          volunteers,
		events:              events,
		submissions:         submissions,
		candidateMultiplier: defaultCandidateMultiplier,
		now:                 time.Now,
		logger:              logger.Get().Named("recommend"),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Recommend returns up to limit future events ranked by similarity to
// the volunteer's preference signal. Returning fewer than limit
// results, including zero, is valid.
func (e *Engine) Recommend(ctx context.Context, volunteerID string, limit int, filters types.Filters) (types.Result, error) {
	start := time.Now()

	if limit <= 0 {
		return types.Result{}, fmt.Errorf("limit %d: %w", limit, ErrInvalidLimit)
	}

	v, err := e.volunteers.Volunteer(ctx, volunteerID)
	if err != nil {
		metrics.RecordRecommendationError()
		return types.Result{}, fmt.Errorf("load volunteer %s: %w", volunteerID, err)
	}

	attendedIDs, err := e.submissions.AttendedEventIDs(ctx, volunteerID)
	if err != nil {
		metrics.RecordRecommendationError()
		return types.Result{}, fmt.Errorf("load attended events for %s: %w", volunteerID, err)
	}

	signal, basedOn, msg, err := e.preferenceSignal(ctx, v, attendedIDs)
	if err != nil {
		metrics.RecordRecommendationError()
		return types.Result{}, err
	}
	if signal == nil {
		// Cold start: no signal can be derived yet.
		metrics.RecordColdStart()
		return types.Result{Recommendations: []types.Recommendation{}, Message: msg}, nil
	}

	candidates, err := e.events.Candidates(ctx, CandidateQuery{
		NotBefore:  e.now(),
		ExcludeIDs: attendedIDs,
		Filters:    filters,
		Limit:      limit * e.candidateMultiplier,
	})
	if err != nil {
		metrics.RecordRecommendationError()
		return types.Result{}, fmt.Errorf("load candidates for %s: %w", volunteerID, err)
	}

	metrics.RecordCandidatesScored(len(candidates))
	if len(candidates) == 0 {
		return types.Result{Recommendations: []types.Recommendation{}, Message: MsgNoMatches, BasedOnEvents: basedOn}, nil
	}

	scored := make([]types.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		score, err := vector.Cosine(signal, c.Embedding)
		if err != nil {
			if errors.Is(err, vector.ErrDimensionMismatch) {
				// Embeddings from different model versions in one store.
				metrics.RecordDimensionMismatch()
				e.logger.Error(ctx, "embedding dimension mismatch; check embedding model configuration",
					logger.String("volunteerID", volunteerID),
					logger.String("eventID", c.ID),
					logger.Int("signalDim", len(signal)),
					logger.Int("eventDim", len(c.Embedding)),
				)
			}
			metrics.RecordRecommendationError()
			return types.Result{}, fmt.Errorf("score event %s: %w", c.ID, err)
		}
		scored = append(scored, types.Recommendation{Event: c, Score: score})
	}

	// Rank: score desc, then earliest start, then id for determinism.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].Event.StartDate.Equal(scored[j].Event.StartDate) {
			return scored[i].Event.StartDate.Before(scored[j].Event.StartDate)
		}
		return scored[i].Event.ID < scored[j].Event.ID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	metrics.RecordRecommendationServed()
	metrics.RecordRecommendationLatency(float64(time.Since(start).Milliseconds()))
	e.logger.Debug(ctx, "recommendations computed",
		logger.String("volunteerID", volunteerID),
		logger.Int("results", len(scored)),
		logger.Int("basedOnEvents", basedOn),
	)

	return types.Result{Recommendations: scored, BasedOnEvents: basedOn}, nil
}

// preferenceSignal resolves the vector representing the volunteer's
// interests: the stored preference embedding when present, otherwise
// the centroid of attended-event embeddings. A nil signal with a
// message denotes the cold-start state.
func (e *Engine) preferenceSignal(ctx context.Context, v model.Volunteer, attendedIDs []string) ([]float64, int, string, error) {
	if len(v.PreferenceEmbedding) > 0 {
		return v.PreferenceEmbedding, 0, "", nil
	}

	if len(attendedIDs) == 0 {
		return nil, 0, MsgNoAttendedEvents, nil
	}

	attended, err := e.events.EventsByIDs(ctx, attendedIDs)
	if err != nil {
		return nil, 0, "", fmt.Errorf("load attended events: %w", err)
	}

	embeddings := make([][]float64, 0, len(attended))
	for _, ev := range attended {
		if len(ev.Embedding) > 0 {
			embeddings = append(embeddings, ev.Embedding)
		}
	}
	if len(embeddings) == 0 {
		return nil, 0, MsgNoEmbeddings, nil
	}

	signal, err := vector.Centroid(embeddings)
	if err != nil {
		if errors.Is(err, vector.ErrDimensionMismatch) {
			metrics.RecordDimensionMismatch()
			e.logger.Error(ctx, "embedding dimension mismatch among attended events; check embedding model configuration",
				logger.String("volunteerID", v.ID),
			)
		}
		return nil, 0, "", fmt.Errorf("centroid for %s: %w", v.ID, err)
	}

	metrics.RecordCentroidFallback()
	return signal, len(embeddings), "", nil
}

package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/voluntree/voluntree/internal/domain/model"
	"github.com/voluntree/voluntree/internal/domain/recommend"
	"github.com/voluntree/voluntree/pkg/logger"
	"github.com/voluntree/voluntree/pkg/metrics"
)

// MemStore is an in-memory Store guarded by a single RWMutex. Reads
// return copies so callers can never alias internal state.
type MemStore struct {
	mu sync.RWMutex

	volunteers   map[string]model.Volunteer
	events       map[string]model.Event
	interactions map[string][]model.Interaction
	submissions  map[string]model.Submission

	logger logger.Logger
}

// MemOption configures a MemStore.
type MemOption func(*MemStore)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) MemOption {
	return func(s *MemStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{
		volunteers:   make(map[string]model.Volunteer),
		events:       make(map[string]model.Event),
		interactions: make(map[string][]model.Interaction),
		submissions:  make(map[string]model.Submission),
		logger:       logger.Get().Named("repository"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PutVolunteer inserts or replaces a volunteer.
func (s *MemStore) PutVolunteer(_ context.Context, v model.Volunteer) error {
	if v.ID == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.volunteers[v.ID] = copyVolunteer(v)
	metrics.UpdateStoreVolunteers(len(s.volunteers))
	return nil
}

// Volunteer returns the volunteer with the given id.
func (s *MemStore) Volunteer(_ context.Context, id string) (model.Volunteer, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.volunteers[id]
	if !ok {
		return model.Volunteer{}, ErrNotFound
	}
	return copyVolunteer(v), nil
}

// SetVolunteerEmbedding overwrites the volunteer's preference embedding.
func (s *MemStore) SetVolunteerEmbedding(_ context.Context, id string, embedding []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.volunteers[id]
	if !ok {
		return ErrNotFound
	}
	v.PreferenceEmbedding = append([]float64(nil), embedding...)
	s.volunteers[id] = v
	return nil
}

// PutEvent inserts or replaces an event.
func (s *MemStore) PutEvent(_ context.Context, e model.Event) error {
	if e.ID == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[e.ID] = copyEvent(e)
	metrics.UpdateStoreEvents(len(s.events))
	return nil
}

// Event returns the event with the given id.
func (s *MemStore) Event(_ context.Context, id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return model.Event{}, ErrNotFound
	}
	return copyEvent(e), nil
}

// EventsByIDs resolves ids to events, skipping unknown ids.
func (s *MemStore) EventsByIDs(_ context.Context, ids []string) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.events[id]; ok {
			out = append(out, copyEvent(e))
		}
	}
	return out, nil
}

// Candidates returns embedded events matching the query, ordered by
// start date asc then id asc, capped at q.Limit when positive.
func (s *MemStore) Candidates(_ context.Context, q recommend.CandidateQuery) ([]model.Event, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	excluded := make(map[string]struct{}, len(q.ExcludeIDs))
	for _, id := range q.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	s.mu.RLock()
	out := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		if len(e.Embedding) == 0 {
			continue
		}
		if _, ok := excluded[e.ID]; ok {
			continue
		}
		if !q.NotBefore.IsZero() && e.StartDate.Before(q.NotBefore) {
			continue
		}
		if !matchesFilters(e, q) {
			continue
		}
		out = append(out, copyEvent(e))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// matchesFilters applies the caller-supplied date/location/category
// filters. The date range matches when it intersects the event window.
func matchesFilters(e model.Event, q recommend.CandidateQuery) bool {
	f := q.Filters
	if !f.From.IsZero() && e.EndDate.Before(f.From) {
		return false
	}
	if !f.Until.IsZero() && e.StartDate.After(f.Until) {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(e.PlaceName), strings.ToLower(f.Location)) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	return true
}

// SetEventEmbedding overwrites the event's embedding.
func (s *MemStore) SetEventEmbedding(_ context.Context, id string, embedding []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return ErrNotFound
	}
	e.Embedding = append([]float64(nil), embedding...)
	s.events[id] = e
	return nil
}

// AppendInteraction records an interaction in the volunteer's log.
func (s *MemStore) AppendInteraction(_ context.Context, in model.Interaction) error {
	if in.VolunteerID == "" || in.EventID == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.interactions[in.VolunteerID] = append(s.interactions[in.VolunteerID], in)
	return nil
}

// RecentInteractions returns up to limit interactions for the
// volunteer, newest first. A non-positive limit returns all of them.
func (s *MemStore) RecentInteractions(_ context.Context, volunteerID string, limit int) ([]model.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.interactions[volunteerID]
	out := make([]model.Interaction, 0, len(log))
	for i := len(log) - 1; i >= 0; i-- {
		out = append(out, log[i])
	}
	// Backfilled interactions may arrive with older timestamps, so the
	// append order alone is not authoritative. Ties keep insertion
	// order, newest insertion first.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PutSubmission inserts or replaces a submission, keyed by the
// volunteer/event pair. Re-submitting updates the status in place.
func (s *MemStore) PutSubmission(_ context.Context, sub model.Submission) error {
	if sub.VolunteerID == "" || sub.EventID == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.submissions[sub.VolunteerID+"\x00"+sub.EventID] = sub
	metrics.UpdateStoreSubmissions(len(s.submissions))
	return nil
}

// AttendedEventIDs returns event ids with an accepted or completed
// submission from the volunteer, sorted for deterministic output.
func (s *MemStore) AttendedEventIDs(_ context.Context, volunteerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for _, sub := range s.submissions {
		if sub.VolunteerID == volunteerID && sub.Status.Attended() {
			ids = append(ids, sub.EventID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Counts reports entity totals.
func (s *MemStore) Counts(_ context.Context) Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, log := range s.interactions {
		total += len(log)
	}
	return Counts{
		Volunteers:   len(s.volunteers),
		Events:       len(s.events),
		Interactions: total,
		Submissions:  len(s.submissions),
	}
}

func copyVolunteer(v model.Volunteer) model.Volunteer {
	v.Interests = append([]string(nil), v.Interests...)
	v.Skills = append([]string(nil), v.Skills...)
	v.PastEvents = append([]string(nil), v.PastEvents...)
	v.PreferenceEmbedding = append([]float64(nil), v.PreferenceEmbedding...)
	return v
}

func copyEvent(e model.Event) model.Event {
	e.Embedding = append([]float64(nil), e.Embedding...)
	return e
}

// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	jobqueue "github.com/voluntree/voluntree/internal/adapters/mq/queue"
	workerpool "github.com/voluntree/voluntree/internal/adapters/mq/worker"
	"github.com/voluntree/voluntree/internal/adapters/repository"
	"github.com/voluntree/voluntree/internal/domain/coalesce"
	"github.com/voluntree/voluntree/internal/domain/model"
	"github.com/voluntree/voluntree/internal/domain/profile"
	"github.com/voluntree/voluntree/internal/domain/recommend"
	"github.com/voluntree/voluntree/internal/domain/types"
	"github.com/voluntree/voluntree/pkg/logger"
	"github.com/voluntree/voluntree/pkg/metrics"

	"github.com/google/uuid"
)

// ErrBackpressure means the rebuild queue is full and the job was not
// accepted.
var ErrBackpressure = errors.New("service: rebuild queue full")

// Service wires the store, the embedding pipeline and the
// recommendation engine together.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     *repository.MemStore
	coalescer coalesce.Coalescer
	jobQueue  jobqueue.Queue
	builder   *profile.Builder
	engine    *recommend.Engine
	pool      *workerpool.Pool

	// Injected dependencies
	embedder profile.Embedder

	// Configuration
	workerCount            int
	queueSize              int
	coalesceSize           int
	maxLimit               int
	defaultLimit           int
	candidateMultiplier    int
	recentInteractionLimit int
	interactionWeights     profile.Weights

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEmbedder sets the embedding provider used to rebuild profiles.
// The service cannot start without one.
func WithEmbedder(e profile.Embedder) Option {
	return func(s *Service) {
		if e != nil {
			s.embedder = e
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the rebuild job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithCoalesceSize sets the size of the pending-job tracker.
func WithCoalesceSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.coalesceSize = size
		}
	}
}

// WithMaxLimit caps the per-request recommendation limit.
func WithMaxLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLimit = limit
		}
	}
}

// WithDefaultLimit sets the limit used when the caller omits one.
func WithDefaultLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

// WithCandidateMultiplier sets the candidate over-fetch multiple.
func WithCandidateMultiplier(m int) Option {
	return func(s *Service) {
		if m > 0 {
			s.candidateMultiplier = m
		}
	}
}

// WithRecentInteractionLimit bounds how many recent interactions feed
// a volunteer profile rebuild.
func WithRecentInteractionLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.recentInteractionLimit = limit
		}
	}
}

// WithInteractionWeights overrides the per-type interaction weights
// used in profile text.
func WithInteractionWeights(w profile.Weights) Option {
	return func(s *Service) {
		if len(w) > 0 {
			s.interactionWeights = w
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:            runtime.NumCPU() * 2,
		queueSize:              10000,
		coalesceSize:           10000,
		maxLimit:               100,
		defaultLimit:           recommend.DefaultLimit,
		recentInteractionLimit: 50,
		stopCh:                 make(chan struct{}),
		logger:                 nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.embedder == nil {
		return errors.New("service: no embedder configured")
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting recommendation service...")

	s.store = repository.NewMemStore()
	s.coalescer = coalesce.NewInMemoryCoalescer(
		coalesce.WithMaxSize(s.coalesceSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)

	builderOpts := []profile.Option{
		profile.WithRecentInteractionLimit(s.recentInteractionLimit),
	}
	if len(s.interactionWeights) > 0 {
		builderOpts = append(builderOpts, profile.WithWeights(s.interactionWeights))
	}
	s.builder = profile.NewBuilder(s.store, s.store, s.store, s.embedder, builderOpts...)

	engineOpts := []recommend.Option{}
	if s.candidateMultiplier > 0 {
		engineOpts = append(engineOpts, recommend.WithCandidateMultiplier(s.candidateMultiplier))
	}
	s.engine = recommend.NewEngine(s.store, s.store, s.store, engineOpts...)

	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, s.builder, s.coalescer)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "recommendation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("coalesceSize", s.coalesceSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping recommendation service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(context.Background())
	}

	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "recommendation service stopped")
}

// CreateVolunteer upserts a volunteer profile and returns its id,
// generating one when the caller left it empty.
func (s *Service) CreateVolunteer(ctx context.Context, v model.Volunteer) (string, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if err := s.store.PutVolunteer(ctx, v); err != nil {
		return "", fmt.Errorf("create volunteer: %w", err)
	}
	return v.ID, nil
}

// Volunteer returns a stored volunteer.
func (s *Service) Volunteer(ctx context.Context, id string) (model.Volunteer, error) {
	return s.store.Volunteer(ctx, id)
}

// CreateEvent upserts an event and returns its id, generating one when
// the caller left it empty.
func (s *Service) CreateEvent(ctx context.Context, e model.Event) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := s.store.PutEvent(ctx, e); err != nil {
		return "", fmt.Errorf("create event: %w", err)
	}
	return e.ID, nil
}

// Event returns a stored event.
func (s *Service) Event(ctx context.Context, id string) (model.Event, error) {
	return s.store.Event(ctx, id)
}

// RecordInteraction appends an interaction to the volunteer's log.
// Both sides of the interaction must exist.
func (s *Service) RecordInteraction(ctx context.Context, in model.Interaction) error {
	if _, err := s.store.Volunteer(ctx, in.VolunteerID); err != nil {
		return fmt.Errorf("interaction volunteer %s: %w", in.VolunteerID, err)
	}
	if _, err := s.store.Event(ctx, in.EventID); err != nil {
		return fmt.Errorf("interaction event %s: %w", in.EventID, err)
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	if err := s.store.AppendInteraction(ctx, in); err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

// RecordSubmission upserts a submission for a volunteer/event pair.
func (s *Service) RecordSubmission(ctx context.Context, sub model.Submission) error {
	if _, err := s.store.Volunteer(ctx, sub.VolunteerID); err != nil {
		return fmt.Errorf("submission volunteer %s: %w", sub.VolunteerID, err)
	}
	if _, err := s.store.Event(ctx, sub.EventID); err != nil {
		return fmt.Errorf("submission event %s: %w", sub.EventID, err)
	}
	if err := s.store.PutSubmission(ctx, sub); err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}

// EnqueueRebuild requests an asynchronous embedding rebuild for the
// given target. Returns coalesced=true when an identical job is
// already pending, and ErrBackpressure when the queue is full.
func (s *Service) EnqueueRebuild(ctx context.Context, kind model.JobKind, targetID string) (coalesced bool, err error) {
	switch kind {
	case model.JobVolunteer:
		if _, err := s.store.Volunteer(ctx, targetID); err != nil {
			return false, fmt.Errorf("rebuild volunteer %s: %w", targetID, err)
		}
	case model.JobEvent:
		if _, err := s.store.Event(ctx, targetID); err != nil {
			return false, fmt.Errorf("rebuild event %s: %w", targetID, err)
		}
	default:
		return false, fmt.Errorf("unknown rebuild kind %q", kind)
	}

	job := model.EmbedJob{
		JobID:    uuid.NewString(),
		Kind:     kind,
		TargetID: targetID,
	}

	if s.coalescer.PendingOrRecord(ctx, job.Key()) {
		metrics.RecordJobCoalesced()
		s.logger.Debug(ctx, "rebuild already pending, coalescing",
			logger.String("key", job.Key()),
		)
		return true, nil
	}

	if !s.jobQueue.Enqueue(ctx, job) {
		// Release the key so the caller can retry later.
		s.coalescer.Unrecord(ctx, job.Key())
		return false, ErrBackpressure
	}

	return false, nil
}

// Recommend returns ranked upcoming events for a volunteer. A zero
// limit falls back to the configured default; anything above the
// configured cap is clamped.
func (s *Service) Recommend(ctx context.Context, volunteerID string, limit int, filters types.Filters) (types.Result, error) {
	if limit == 0 {
		limit = s.defaultLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		limit = s.maxLimit
	}
	return s.engine.Recommend(ctx, volunteerID, limit, filters)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"coalesceSize": s.coalesceSize,
	}

	if s.started {
		counts := s.store.Counts(ctx)
		queueLen := s.jobQueue.Len(ctx)

		stats["queueLength"] = queueLen
		stats["pendingJobs"] = s.coalescer.Size()
		stats["volunteers"] = counts.Volunteers
		stats["events"] = counts.Events
		stats["interactions"] = counts.Interactions
		stats["submissions"] = counts.Submissions

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// PendingJobs returns the current number of pending rebuild keys.
func (s *Service) PendingJobs() int64 {
	if s.coalescer == nil {
		return 0
	}
	return s.coalescer.Size()
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/voluntree/voluntree/internal/domain/model"
	"github.com/voluntree/voluntree/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreateVolunteer(ctx context.Context, v model.Volunteer) (string, error)
	CreateEvent(ctx context.Context, e model.Event) (string, error)
	RecordInteraction(ctx context.Context, in model.Interaction) error
	RecordSubmission(ctx context.Context, sub model.Submission) error

	// EnqueueRebuild requests an async embedding rebuild. Returns
	// coalesced=true when an identical job is already pending.
	EnqueueRebuild(ctx context.Context, kind model.JobKind, targetID string) (coalesced bool, err error)

	Recommend(ctx context.Context, volunteerID string, limit int, filters types.Filters) (types.Result, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	volunteersHandler      *VolunteersHandler
	eventsHandler          *EventsHandler
	interactionsHandler    *InteractionsHandler
	submissionsHandler     *SubmissionsHandler
	embeddingsHandler      *EmbeddingsHandler
	recommendationsHandler *RecommendationsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(statsProvider),
		volunteersHandler:      NewVolunteersHandler(deps),
		eventsHandler:          NewEventsHandler(deps),
		interactionsHandler:    NewInteractionsHandler(deps),
		submissionsHandler:     NewSubmissionsHandler(deps),
		embeddingsHandler:      NewEmbeddingsHandler(deps),
		recommendationsHandler: NewRecommendationsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/volunteers", MetricsMiddleware(s.volunteersHandler.HandlePostVolunteer, "volunteers"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/interactions", MetricsMiddleware(s.interactionsHandler.HandlePostInteraction, "interactions"))
	mux.HandleFunc("/submissions", MetricsMiddleware(s.submissionsHandler.HandlePostSubmission, "submissions"))
	mux.HandleFunc("/embeddings/volunteer", MetricsMiddleware(s.embeddingsHandler.HandleRebuildVolunteer, "embeddings_volunteer"))
	mux.HandleFunc("/embeddings/event", MetricsMiddleware(s.embeddingsHandler.HandleRebuildEvent, "embeddings_event"))
	mux.HandleFunc("/recommendations/", MetricsMiddleware(s.recommendationsHandler.HandleGetRecommendations, "recommendations"))
}

// eventView is the wire shape of an event; embeddings never leave the
// service.
type eventView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	PlaceName   string `json:"place_name,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

func toEventView(e model.Event) eventView {
	v := eventView{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Category:    string(e.Category),
		PlaceName:   e.PlaceName,
	}
	if !e.StartDate.IsZero() {
		v.StartDate = e.StartDate.Format(time.RFC3339)
	}
	if !e.EndDate.IsZero() {
		v.EndDate = e.EndDate.Format(time.RFC3339)
	}
	return v
}

type ackResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

type rebuildResponse struct {
	Status    string `json:"status"`
	Coalesced bool   `json:"coalesced"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

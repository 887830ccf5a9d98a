package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/voluntree/voluntree/internal/domain/model"
)

// EventDependencies defines the interface for event ingestion.
type EventDependencies interface {
	CreateEvent(ctx context.Context, e model.Event) (string, error)
}

// EventsHandler handles event ingestion requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest mirrors the OpenAPI schema for POST /events.
type eventRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PlaceName   string `json:"place_name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return errors.New("missing title")
	case strings.TrimSpace(e.StartDate) == "":
		return errors.New("missing start_date")
	case strings.TrimSpace(e.EndDate) == "":
		return errors.New("missing end_date")
	}
	if _, err := time.Parse(time.RFC3339, e.StartDate); err != nil {
		return errors.New("invalid start_date; must be RFC3339")
	}
	if _, err := time.Parse(time.RFC3339, e.EndDate); err != nil {
		return errors.New("invalid end_date; must be RFC3339")
	}
	if e.Category != "" {
		if _, err := model.ParseCategory(e.Category); err != nil {
			return fmt.Errorf("invalid category %q", e.Category)
		}
	}
	return nil
}

// HandlePostEvent handles POST /events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	start, _ := time.Parse(time.RFC3339, req.StartDate)
	end, _ := time.Parse(time.RFC3339, req.EndDate)
	var category model.Category
	if req.Category != "" {
		category, _ = model.ParseCategory(req.Category)
	}

	e := model.Event{
		ID:          strings.TrimSpace(req.ID),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    category,
		PlaceName:   strings.TrimSpace(req.PlaceName),
		StartDate:   start,
		EndDate:     end,
	}
	id, err := h.deps.CreateEvent(r.Context(), e)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "created", ID: id})
}

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

// InteractionDependencies defines the interface for interaction ingestion.
type InteractionDependencies interface {
	RecordInteraction(ctx context.Context, in model.Interaction) error
}

// InteractionsHandler handles interaction log requests.
type InteractionsHandler struct {
	deps InteractionDependencies
}

// NewInteractionsHandler creates a new interactions handler.
func NewInteractionsHandler(deps InteractionDependencies) *InteractionsHandler {
	return &InteractionsHandler{deps: deps}
}

// interactionRequest mirrors the OpenAPI schema for POST /interactions.
type interactionRequest struct {
	VolunteerID string `json:"volunteer_id"`
	EventID     string `json:"event_id"`
	Type        string `json:"type"`
	CreatedAt   string `json:"created_at"`
}

func (i interactionRequest) validate() error {
	switch {
	case strings.TrimSpace(i.VolunteerID) == "":
		return errors.New("missing volunteer_id")
	case strings.TrimSpace(i.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(i.Type) == "":
		return errors.New("missing type")
	}
	if _, err := model.ParseInteractionType(i.Type); err != nil {
		return fmt.Errorf("invalid type %q", i.Type)
	}
	if i.CreatedAt != "" {
		if _, err := time.Parse(time.RFC3339, i.CreatedAt); err != nil {
			return errors.New("invalid created_at; must be RFC3339")
		}
	}
	return nil
}

// HandlePostInteraction handles POST /interactions requests.
func (h *InteractionsHandler) HandlePostInteraction(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_interaction"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	typ, _ := model.ParseInteractionType(req.Type)
	in := model.Interaction{
		VolunteerID: strings.TrimSpace(req.VolunteerID),
		EventID:     strings.TrimSpace(req.EventID),
		Type:        typ,
	}
	if req.CreatedAt != "" {
		in.CreatedAt, _ = time.Parse(time.RFC3339, req.CreatedAt)
	}

	if err := h.deps.RecordInteraction(r.Context(), in); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "recorded"})
}

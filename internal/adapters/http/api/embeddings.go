package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/voluntree/voluntree/internal/domain/model"
)

// EmbeddingDependencies defines the interface for rebuild requests.
type EmbeddingDependencies interface {
	EnqueueRebuild(ctx context.Context, kind model.JobKind, targetID string) (coalesced bool, err error)
}

// EmbeddingsHandler handles embedding rebuild requests.
type EmbeddingsHandler struct {
	deps EmbeddingDependencies
}

// NewEmbeddingsHandler creates a new embeddings handler.
func NewEmbeddingsHandler(deps EmbeddingDependencies) *EmbeddingsHandler {
	return &EmbeddingsHandler{deps: deps}
}

// rebuildRequest mirrors the OpenAPI schema for POST /embeddings/{kind}.
type rebuildRequest struct {
	VolunteerID string `json:"volunteer_id"`
	EventID     string `json:"event_id"`
}

// HandleRebuildVolunteer handles POST /embeddings/volunteer requests.
func (h *EmbeddingsHandler) HandleRebuildVolunteer(w http.ResponseWriter, r *http.Request) {
	h.handleRebuild(w, r, "api.rebuild_volunteer", model.JobVolunteer)
}

// HandleRebuildEvent handles POST /embeddings/event requests.
func (h *EmbeddingsHandler) HandleRebuildEvent(w http.ResponseWriter, r *http.Request) {
	h.handleRebuild(w, r, "api.rebuild_event", model.JobEvent)
}

func (h *EmbeddingsHandler) handleRebuild(w http.ResponseWriter, r *http.Request, op string, kind model.JobKind) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req rebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	var targetID string
	switch kind {
	case model.JobVolunteer:
		targetID = strings.TrimSpace(req.VolunteerID)
	case model.JobEvent:
		targetID = strings.TrimSpace(req.EventID)
	}
	if targetID == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("missing target id")))
		return
	}

	coalesced, err := h.deps.EnqueueRebuild(r.Context(), kind, targetID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	if coalesced {
		writeJSON(w, http.StatusOK, rebuildResponse{Status: "pending", Coalesced: true})
		return
	}
	writeJSON(w, http.StatusAccepted, rebuildResponse{Status: "accepted", Coalesced: false})
}

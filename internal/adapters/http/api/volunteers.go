package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/voluntree/voluntree/internal/domain/model"
)

// VolunteerDependencies defines the interface for volunteer ingestion.
type VolunteerDependencies interface {
	CreateVolunteer(ctx context.Context, v model.Volunteer) (string, error)
}

// VolunteersHandler handles volunteer ingestion requests.
type VolunteersHandler struct {
	deps VolunteerDependencies
}

// NewVolunteersHandler creates a new volunteers handler.
func NewVolunteersHandler(deps VolunteerDependencies) *VolunteersHandler {
	return &VolunteersHandler{deps: deps}
}

// volunteerRequest mirrors the OpenAPI schema for POST /volunteers.
type volunteerRequest struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Interests  []string `json:"interests"`
	Skills     []string `json:"skills"`
	PastEvents []string `json:"past_events"`
}

func (v volunteerRequest) validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return errors.New("missing name")
	}
	return nil
}

// HandlePostVolunteer handles POST /volunteers requests.
func (h *VolunteersHandler) HandlePostVolunteer(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_volunteer"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req volunteerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	v := model.Volunteer{
		ID:         strings.TrimSpace(req.ID),
		Name:       strings.TrimSpace(req.Name),
		Interests:  req.Interests,
		Skills:     req.Skills,
		PastEvents: req.PastEvents,
	}
	id, err := h.deps.CreateVolunteer(r.Context(), v)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "created", ID: id})
}

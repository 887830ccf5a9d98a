package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/voluntree/voluntree/internal/domain/model"
)

// SubmissionDependencies defines the interface for submission ingestion.
type SubmissionDependencies interface {
	RecordSubmission(ctx context.Context, sub model.Submission) error
}

// SubmissionsHandler handles submission status requests.
type SubmissionsHandler struct {
	deps SubmissionDependencies
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps SubmissionDependencies) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps}
}

// submissionRequest mirrors the OpenAPI schema for POST /submissions.
type submissionRequest struct {
	VolunteerID string `json:"volunteer_id"`
	EventID     string `json:"event_id"`
	Status      string `json:"status"`
}

func (s submissionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.VolunteerID) == "":
		return errors.New("missing volunteer_id")
	case strings.TrimSpace(s.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(s.Status) == "":
		return errors.New("missing status")
	}
	if _, err := model.ParseSubmissionStatus(s.Status); err != nil {
		return fmt.Errorf("invalid status %q", s.Status)
	}
	return nil
}

// HandlePostSubmission handles POST /submissions requests.
func (h *SubmissionsHandler) HandlePostSubmission(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_submission"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	status, _ := model.ParseSubmissionStatus(req.Status)
	sub := model.Submission{
		VolunteerID: strings.TrimSpace(req.VolunteerID),
		EventID:     strings.TrimSpace(req.EventID),
		Status:      status,
	}

	if err := h.deps.RecordSubmission(r.Context(), sub); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "recorded"})
}

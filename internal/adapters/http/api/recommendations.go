package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/voluntree/voluntree/internal/domain/model"
	"github.com/voluntree/voluntree/internal/domain/types"
)

// RecommendationDependencies defines the interface for recommendation queries.
type RecommendationDependencies interface {
	Recommend(ctx context.Context, volunteerID string, limit int, filters types.Filters) (types.Result, error)
}

// RecommendationsHandler handles recommendation requests.
type RecommendationsHandler struct {
	deps RecommendationDependencies
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps RecommendationDependencies) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps}
}

// recommendationView is one ranked entry on the wire.
type recommendationView struct {
	Event eventView `json:"event"`
	Score float64   `json:"score"`
}

// resultView is the wire shape of a recommendation response.
type resultView struct {
	Recommendations []recommendationView `json:"recommendations"`
	Message         string               `json:"message,omitempty"`
	BasedOnEvents   int                  `json:"based_on_events,omitempty"`
}

func toResultView(res types.Result) resultView {
	out := resultView{
		Recommendations: make([]recommendationView, 0, len(res.Recommendations)),
		Message:         res.Message,
		BasedOnEvents:   res.BasedOnEvents,
	}
	for _, rec := range res.Recommendations {
		out.Recommendations = append(out.Recommendations, recommendationView{
			Event: toEventView(rec.Event),
			Score: rec.Score,
		})
	}
	return out
}

// parseFilters reads the optional query filters.
func parseFilters(r *http.Request) (types.Filters, error) {
	var f types.Filters
	q := r.URL.Query()

	if from := q.Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return f, errors.New("invalid from; must be RFC3339")
		}
		f.From = t
	}
	if until := q.Get("until"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return f, errors.New("invalid until; must be RFC3339")
		}
		f.Until = t
	}
	if !f.From.IsZero() && !f.Until.IsZero() && f.Until.Before(f.From) {
		return f, errors.New("until must not precede from")
	}
	f.Location = strings.TrimSpace(q.Get("location"))
	if cat := q.Get("category"); cat != "" {
		parsed, err := model.ParseCategory(cat)
		if err != nil {
			return f, fmt.Errorf("invalid category %q", cat)
		}
		f.Category = parsed
	}
	return f, nil
}

// HandleGetRecommendations handles GET /recommendations/{volunteer_id} requests.
func (h *RecommendationsHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recommendations"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /recommendations/
	volunteerID := strings.TrimPrefix(r.URL.Path, "/recommendations/")
	if volunteerID == "" || strings.Contains(volunteerID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, errors.New("limit must be a positive integer")))
			return
		}
		limit = n
	}

	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Recommend(r.Context(), volunteerID, limit, filters)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toResultView(res))
}

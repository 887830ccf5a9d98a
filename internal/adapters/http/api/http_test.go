package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/voluntree/voluntree/internal/adapters/http/api"
	"github.com/voluntree/voluntree/internal/adapters/repository"
	service "github.com/voluntree/voluntree/internal/app"
	"github.com/voluntree/voluntree/internal/domain/model"
	"github.com/voluntree/voluntree/internal/domain/recommend"
	"github.com/voluntree/voluntree/internal/domain/types"
	"github.com/voluntree/voluntree/pkg/logger"
)

func init() {
	_ = logger.Init()
}

// fakeDeps implements api.Dependencies backed by plain maps.
type fakeDeps struct {
	volunteers map[string]model.Volunteer
	events     map[string]model.Event

	interactions []model.Interaction
	submissions  []model.Submission

	pending     map[string]bool
	backpressed bool

	result types.Result
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{
		volunteers: make(map[string]model.Volunteer),
		events:     make(map[string]model.Event),
		pending:    make(map[string]bool),
	}
}

func (f *fakeDeps) CreateVolunteer(_ context.Context, v model.Volunteer) (string, error) {
	if v.ID == "" {
		v.ID = fmt.Sprintf("v-%d", len(f.volunteers)+1)
	}
	f.volunteers[v.ID] = v
	return v.ID, nil
}

func (f *fakeDeps) CreateEvent(_ context.Context, e model.Event) (string, error) {
	if e.ID == "" {
		e.ID = fmt.Sprintf("e-%d", len(f.events)+1)
	}
	f.events[e.ID] = e
	return e.ID, nil
}

func (f *fakeDeps) RecordInteraction(_ context.Context, in model.Interaction) error {
	if _, ok := f.volunteers[in.VolunteerID]; !ok {
		return fmt.Errorf("volunteer %s: %w", in.VolunteerID, repository.ErrNotFound)
	}
	if _, ok := f.events[in.EventID]; !ok {
		return fmt.Errorf("event %s: %w", in.EventID, repository.ErrNotFound)
	}
	f.interactions = append(f.interactions, in)
	return nil
}

func (f *fakeDeps) RecordSubmission(_ context.Context, sub model.Submission) error {
	if _, ok := f.volunteers[sub.VolunteerID]; !ok {
		return fmt.Errorf("volunteer %s: %w", sub.VolunteerID, repository.ErrNotFound)
	}
	f.submissions = append(f.submissions, sub)
	return nil
}

func (f *fakeDeps) EnqueueRebuild(_ context.Context, kind model.JobKind, targetID string) (bool, error) {
	switch kind {
	case model.JobVolunteer:
		if _, ok := f.volunteers[targetID]; !ok {
			return false, fmt.Errorf("volunteer %s: %w", targetID, repository.ErrNotFound)
		}
	case model.JobEvent:
		if _, ok := f.events[targetID]; !ok {
			return false, fmt.Errorf("event %s: %w", targetID, repository.ErrNotFound)
		}
	}
	if f.backpressed {
		return false, service.ErrBackpressure
	}
	key := string(kind) + ":" + targetID
	if f.pending[key] {
		return true, nil
	}
	f.pending[key] = true
	return false, nil
}

func (f *fakeDeps) Recommend(_ context.Context, volunteerID string, limit int, _ types.Filters) (types.Result, error) {
	if _, ok := f.volunteers[volunteerID]; !ok {
		return types.Result{}, fmt.Errorf("volunteer %s: %w", volunteerID, repository.ErrNotFound)
	}
	if limit < 0 {
		return types.Result{}, recommend.ErrInvalidLimit
	}
	return f.result, nil
}

func (f *fakeDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"started":    true,
		"volunteers": len(f.volunteers),
	}
}

func newTestServer(deps *fakeDeps) *httptest.Server {
	srv := api.NewServer(deps, deps)
	mux := http.NewServeMux()
	srv.Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestVolunteerIngestion(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newFakeDeps()
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When posting a valid volunteer", func() {
			resp, body := postJSON(t, ts.URL+"/volunteers",
				`{"name":"Ada","interests":["ecology"],"skills":["first aid"]}`)

			Convey("Then it is created with a generated id", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(body["status"], ShouldEqual, "created")
				So(body["id"], ShouldNotBeEmpty)
			})
		})

		Convey("When the name is missing", func() {
			resp, body := postJSON(t, ts.URL+"/volunteers", `{"interests":["ecology"]}`)

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(body["code"], ShouldEqual, "bad_request")
		})

		Convey("When the body is not JSON", func() {
			resp, _ := postJSON(t, ts.URL+"/volunteers", `{not json`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using the wrong method", func() {
			resp, err := http.Get(ts.URL + "/volunteers")
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestEventIngestion(t *testing.T) {
	start := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(26 * time.Hour).UTC().Format(time.RFC3339)

	Convey("Given the API server", t, func() {
		deps := newFakeDeps()
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When posting a valid event", func() {
			resp, body := postJSON(t, ts.URL+"/events", fmt.Sprintf(
				`{"title":"River Cleanup","category":"ENVIRONMENT","place_name":"Riverside","start_date":%q,"end_date":%q}`,
				start, end))

			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			So(body["id"], ShouldNotBeEmpty)
		})

		Convey("When the category is unknown", func() {
			resp, _ := postJSON(t, ts.URL+"/events", fmt.Sprintf(
				`{"title":"X","category":"KNITTING","start_date":%q,"end_date":%q}`, start, end))
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a date is not RFC3339", func() {
			resp, _ := postJSON(t, ts.URL+"/events",
				`{"title":"X","start_date":"tomorrow","end_date":"later"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestInteractionAndSubmissionIngestion(t *testing.T) {
	Convey("Given the API server with a known volunteer and event", t, func() {
		deps := newFakeDeps()
		deps.volunteers["v1"] = model.Volunteer{ID: "v1", Name: "Ada"}
		deps.events["e1"] = model.Event{ID: "e1", Title: "Cleanup"}
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When recording a valid interaction", func() {
			resp, body := postJSON(t, ts.URL+"/interactions",
				`{"volunteer_id":"v1","event_id":"e1","type":"registered"}`)

			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			So(body["status"], ShouldEqual, "recorded")
			So(deps.interactions, ShouldHaveLength, 1)
		})

		Convey("When the interaction type is unknown", func() {
			resp, _ := postJSON(t, ts.URL+"/interactions",
				`{"volunteer_id":"v1","event_id":"e1","type":"waved"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the volunteer does not exist", func() {
			resp, body := postJSON(t, ts.URL+"/interactions",
				`{"volunteer_id":"ghost","event_id":"e1","type":"viewed"}`)

			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			So(body["code"], ShouldEqual, "not_found")
		})

		Convey("When recording a valid submission", func() {
			resp, _ := postJSON(t, ts.URL+"/submissions",
				`{"volunteer_id":"v1","event_id":"e1","status":"COMPLETED"}`)

			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			So(deps.submissions, ShouldHaveLength, 1)
		})

		Convey("When the submission status is unknown", func() {
			resp, _ := postJSON(t, ts.URL+"/submissions",
				`{"volunteer_id":"v1","event_id":"e1","status":"MAYBE"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestRebuildEndpoints(t *testing.T) {
	Convey("Given the API server with known targets", t, func() {
		deps := newFakeDeps()
		deps.volunteers["v1"] = model.Volunteer{ID: "v1", Name: "Ada"}
		deps.events["e1"] = model.Event{ID: "e1", Title: "Cleanup"}
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When requesting a volunteer rebuild", func() {
			resp, body := postJSON(t, ts.URL+"/embeddings/volunteer", `{"volunteer_id":"v1"}`)

			So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
			So(body["status"], ShouldEqual, "accepted")
			So(body["coalesced"], ShouldEqual, false)
		})

		Convey("When the same rebuild is already pending", func() {
			_, _ = postJSON(t, ts.URL+"/embeddings/event", `{"event_id":"e1"}`)
			resp, body := postJSON(t, ts.URL+"/embeddings/event", `{"event_id":"e1"}`)

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["status"], ShouldEqual, "pending")
			So(body["coalesced"], ShouldEqual, true)
		})

		Convey("When the target does not exist", func() {
			resp, _ := postJSON(t, ts.URL+"/embeddings/event", `{"event_id":"missing"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the target id is missing", func() {
			resp, _ := postJSON(t, ts.URL+"/embeddings/volunteer", `{}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the queue is saturated", func() {
			deps.backpressed = true
			resp, body := postJSON(t, ts.URL+"/embeddings/volunteer", `{"volunteer_id":"v1"}`)

			So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
			So(body["code"], ShouldEqual, "backpressure")
		})
	})
}

func TestRecommendationsEndpoint(t *testing.T) {
	soon := time.Date(2026, time.September, 12, 9, 0, 0, 0, time.UTC)

	Convey("Given the API server with a recommendation fixture", t, func() {
		deps := newFakeDeps()
		deps.volunteers["v1"] = model.Volunteer{ID: "v1", Name: "Ada"}
		deps.result = types.Result{
			Recommendations: []types.Recommendation{
				{
					Event: model.Event{
						ID:        "e1",
						Title:     "River Cleanup",
						Category:  model.CategoryEnvironment,
						PlaceName: "Riverside",
						StartDate: soon,
						EndDate:   soon.Add(2 * time.Hour),
						Embedding: []float64{1, 0},
					},
					Score: 0.93,
				},
			},
			BasedOnEvents: 2,
		}
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When fetching recommendations", func() {
			resp, body := getJSON(t, ts.URL+"/recommendations/v1?limit=5")

			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			Convey("Then the ranked events come back without embeddings", func() {
				recs := body["recommendations"].([]any)
				So(recs, ShouldHaveLength, 1)

				first := recs[0].(map[string]any)
				So(first["score"], ShouldEqual, 0.93)

				event := first["event"].(map[string]any)
				So(event["id"], ShouldEqual, "e1")
				So(event["category"], ShouldEqual, "ENVIRONMENT")
				So(event, ShouldNotContainKey, "Embedding")
				So(event, ShouldNotContainKey, "embedding")
			})

			Convey("Then the profile depth is reported", func() {
				So(body["based_on_events"], ShouldEqual, 2)
			})
		})

		Convey("When the volunteer has no history", func() {
			deps.result = types.Result{
				Recommendations: []types.Recommendation{},
				Message:         recommend.MsgNoAttendedEvents,
			}

			resp, body := getJSON(t, ts.URL+"/recommendations/v1")

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["message"], ShouldEqual, recommend.MsgNoAttendedEvents)
			So(body["recommendations"], ShouldHaveLength, 0)
		})

		Convey("When the volunteer does not exist", func() {
			resp, _ := getJSON(t, ts.URL+"/recommendations/ghost")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the limit is not a positive integer", func() {
			resp, _ := getJSON(t, ts.URL+"/recommendations/v1?limit=zero")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, _ = getJSON(t, ts.URL+"/recommendations/v1?limit=-2")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the category filter is unknown", func() {
			resp, _ := getJSON(t, ts.URL+"/recommendations/v1?category=KNITTING")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the date range is inverted", func() {
			resp, _ := getJSON(t, ts.URL+
				"/recommendations/v1?from=2026-09-20T00:00:00Z&until=2026-09-10T00:00:00Z")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the volunteer id is missing from the path", func() {
			resp, _ := getJSON(t, ts.URL+"/recommendations/")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newFakeDeps()
		deps.volunteers["v1"] = model.Volunteer{ID: "v1"}
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When fetching stats", func() {
			resp, body := getJSON(t, ts.URL+"/stats")

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["started"], ShouldEqual, true)
			So(body["volunteers"], ShouldEqual, 1)
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts := newTestServer(newFakeDeps())
		defer ts.Close()

		Convey("When scraping the health endpoint", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}

package recommend_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/voluntree/voluntree/internal/domain/model"
	"github.com/voluntree/voluntree/internal/domain/recommend"
	"github.com/voluntree/voluntree/internal/domain/types"
	"github.com/voluntree/voluntree/pkg/logger"
)

func init() {
	_ = logger.Init()
}

var errNotFound = errors.New("not found")

// fakeSource implements VolunteerSource, EventSource and
// SubmissionSource, honoring the candidate query semantics the real
// store provides.
type fakeSource struct {
	volunteers map[string]model.Volunteer
	events     map[string]model.Event
	attended   map[string][]string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		volunteers: make(map[string]model.Volunteer),
		events:     make(map[string]model.Event),
		attended:   make(map[string][]string),
	}
}

func (s *fakeSource) Volunteer(_ context.Context, id string) (model.Volunteer, error) {
	v, ok := s.volunteers[id]
	if !ok {
		return model.Volunteer{}, errNotFound
	}
	return v, nil
}

func (s *fakeSource) EventsByIDs(_ context.Context, ids []string) ([]model.Event, error) {
	out := make([]model.Event, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.events[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeSource) Candidates(_ context.Context, q recommend.CandidateQuery) ([]model.Event, error) {
	excluded := make(map[string]bool, len(q.ExcludeIDs))
	for _, id := range q.ExcludeIDs {
		excluded[id] = true
	}

	var out []model.Event
	for _, e := range s.events {
		if len(e.Embedding) == 0 || excluded[e.ID] || e.StartDate.Before(q.NotBefore) {
			continue
		}
		if !q.Filters.From.IsZero() && e.EndDate.Before(q.Filters.From) {
			continue
		}
		if !q.Filters.Until.IsZero() && e.StartDate.After(q.Filters.Until) {
			continue
		}
		if q.Filters.Location != "" &&
			!strings.Contains(strings.ToLower(e.PlaceName), strings.ToLower(q.Filters.Location)) {
			continue
		}
		if q.Filters.Category != "" && e.Category != q.Filters.Category {
			continue
		}
		out = append(out, e)
	}

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

func (s *fakeSource) AttendedEventIDs(_ context.Context, volunteerID string) ([]string, error) {
	return s.attended[volunteerID], nil
}

var baseTime = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func futureEvent(id string, daysAhead int, embedding []float64) model.Event {
	return model.Event{
		ID:        id,
		Title:     "Event " + id,
		Category:  model.CategoryOther,
		PlaceName: "Town hall",
		StartDate: baseTime.AddDate(0, 0, daysAhead),
		EndDate:   baseTime.AddDate(0, 0, daysAhead).Add(4 * time.Hour),
		Embedding: embedding,
	}
}

func newEngine(src *fakeSource) *recommend.Engine {
	return recommend.NewEngine(src, src, src, recommend.WithNow(func() time.Time { return baseTime }))
}

func TestRecommendRanking(t *testing.T) {
	Convey("Given a volunteer with a stored preference embedding", t, func() {
		ctx := context.Background()
		src := newFakeSource()
		src.volunteers["v-1"] = model.Volunteer{ID: "v-1", PreferenceEmbedding: []float64{1, 0, 0}}
		src.events["A"] = futureEvent("A", 1, []float64{1, 0, 0})
		src.events["B"] = futureEvent("B", 2, []float64{0, 1, 0})
		src.events["C"] = futureEvent("C", 3, []float64{0.7, 0.7, 0})
		engine := newEngine(src)

		Convey("When requesting two recommendations", func() {
			res, err := engine.Recommend(ctx, "v-1", 2, types.Filters{})

			Convey("Then the best matches should come back in order", func() {
				So(err, ShouldBeNil)
				So(len(res.Recommendations), ShouldEqual, 2)
				So(res.Recommendations[0].Event.ID, ShouldEqual, "A")
				So(res.Recommendations[0].Score, ShouldAlmostEqual, 1.0, 1e-9)
				So(res.Recommendations[1].Event.ID, ShouldEqual, "C")
				So(res.Recommendations[1].Score, ShouldAlmostEqual, 0.7071067811865475, 1e-9)
				So(res.Message, ShouldBeEmpty)
			})
		})

		Convey("When the limit exceeds the candidate count", func() {
			res, err := engine.Recommend(ctx, "v-1", 50, types.Filters{})

			Convey("Then fewer results than the limit is valid", func() {
				So(err, ShouldBeNil)
				So(len(res.Recommendations), ShouldEqual, 3)
			})
		})

		Convey("When scores tie", func() {
			src.events["D"] = futureEvent("D", 5, []float64{1, 0, 0})
			res, err := engine.Recommend(ctx, "v-1", 10, types.Filters{})

			Convey("Then ties break by earliest start date", func() {
				So(err, ShouldBeNil)
				So(res.Recommendations[0].Event.ID, ShouldEqual, "A")
				So(res.Recommendations[1].Event.ID, ShouldEqual, "D")
			})
		})

		Convey("When the limit is not positive", func() {
			_, err := engine.Recommend(ctx, "v-1", 0, types.Filters{})
			So(errors.Is(err, recommend.ErrInvalidLimit), ShouldBeTrue)

			_, err = engine.Recommend(ctx, "v-1", -5, types.Filters{})
			So(errors.Is(err, recommend.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("When the volunteer does not exist", func() {
			_, err := engine.Recommend(ctx, "ghost", 5, types.Filters{})
			So(errors.Is(err, errNotFound), ShouldBeTrue)
		})
	})
}

func TestRecommendExclusionsAndFilters(t *testing.T) {
	Convey("Given a volunteer with attendance history", t, func() {
		ctx := context.Background()
		src := newFakeSource()
		src.volunteers["v-1"] = model.Volunteer{ID: "v-1", PreferenceEmbedding: []float64{1, 0, 0}}
		src.attended["v-1"] = []string{"A"}
		src.events["A"] = futureEvent("A", 1, []float64{1, 0, 0})
		src.events["B"] = futureEvent("B", 2, []float64{0.9, 0.1, 0})
		engine := newEngine(src)

		Convey("When recommending", func() {
			res, err := engine.Recommend(ctx, "v-1", 10, types.Filters{})

			Convey("Then attended events are never included", func() {
				So(err, ShouldBeNil)
				for _, r := range res.Recommendations {
					So(r.Event.ID, ShouldNotEqual, "A")
				}
				So(len(res.Recommendations), ShouldEqual, 1)
			})
		})

		Convey("When a category filter is supplied", func() {
			e := futureEvent("H", 3, []float64{1, 0, 0})
			e.Category = model.CategoryHealth
			src.events["H"] = e

			res, err := engine.Recommend(ctx, "v-1", 10, types.Filters{Category: model.CategoryHealth})

			Convey("Then only matching events survive", func() {
				So(err, ShouldBeNil)
				So(len(res.Recommendations), ShouldEqual, 1)
				So(res.Recommendations[0].Event.ID, ShouldEqual, "H")
			})
		})

		Convey("When a location filter is supplied", func() {
			e := futureEvent("L", 3, []float64{1, 0, 0})
			e.PlaceName = "Riverside Park"
			src.events["L"] = e

			res, err := engine.Recommend(ctx, "v-1", 10, types.Filters{Location: "riverside"})

			Convey("Then the match is case-insensitive substring", func() {
				So(err, ShouldBeNil)
				So(len(res.Recommendations), ShouldEqual, 1)
				So(res.Recommendations[0].Event.ID, ShouldEqual, "L")
			})
		})

		Convey("When a date range excludes everything", func() {
			res, err := engine.Recommend(ctx, "v-1", 10, types.Filters{
				From:  baseTime.AddDate(1, 0, 0),
				Until: baseTime.AddDate(1, 0, 1),
			})

			Convey("Then an empty result with a message is returned", func() {
				So(err, ShouldBeNil)
				So(res.Recommendations, ShouldBeEmpty)
				So(res.Message, ShouldEqual, recommend.MsgNoMatches)
			})
		})

		Convey("When an event already started", func() {
			past := futureEvent("P", -1, []float64{1, 0, 0})
			src.events["P"] = past

			res, err := engine.Recommend(ctx, "v-1", 10, types.Filters{})

			Convey("Then past events are never recommended", func() {
				So(err, ShouldBeNil)
				for _, r := range res.Recommendations {
					So(r.Event.ID, ShouldNotEqual, "P")
				}
			})
		})
	})
}

func TestRecommendColdStart(t *testing.T) {
	Convey("Given a volunteer without a preference embedding", t, func() {
		ctx := context.Background()
		src := newFakeSource()
		src.volunteers["v-1"] = model.Volunteer{ID: "v-1"}
		engine := newEngine(src)

		Convey("When they have no attended events", func() {
			res, err := engine.Recommend(ctx, "v-1", 10, types.Filters{})

			Convey("Then cold start is a message, not an error", func() {
				So(err, ShouldBeNil)
				So(res.Recommendations, ShouldBeEmpty)
				So(res.Message, ShouldEqual, recommend.MsgNoAttendedEvents)
			})
		})

		Convey("When attended events lack embeddings", func() {
			src.attended["v-1"] = []string{"X"}
			src.events["X"] = futureEvent("X", -10, nil)

			res, err := engine.Recommend(ctx, "v-1", 10, types.Filters{})

			Convey("Then the embeddings-missing message is returned", func() {
				So(err, ShouldBeNil)
				So(res.Recommendations, ShouldBeEmpty)
				So(res.Message, ShouldEqual, recommend.MsgNoEmbeddings)
			})
		})

		Convey("When attended events carry embeddings", func() {
			src.attended["v-1"] = []string{"X", "Y"}
			src.events["X"] = futureEvent("X", -10, []float64{1, 0, 0})
			src.events["Y"] = futureEvent("Y", -5, []float64{0, 1, 0})
			src.events["Z"] = futureEvent("Z", 2, []float64{0.5, 0.5, 0})

			res, err := engine.Recommend(ctx, "v-1", 10, types.Filters{})

			Convey("Then the centroid of attended embeddings drives scoring", func() {
				So(err, ShouldBeNil)
				So(res.BasedOnEvents, ShouldEqual, 2)
				So(len(res.Recommendations), ShouldEqual, 1)
				So(res.Recommendations[0].Event.ID, ShouldEqual, "Z")
				So(res.Recommendations[0].Score, ShouldAlmostEqual, 1.0, 1e-9)
			})
		})
	})
}

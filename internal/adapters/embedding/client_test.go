package embedding_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/voluntree/voluntree/internal/adapters/embedding"
)

// stubProvider mimics an OpenAI-compatible /embeddings endpoint.
func stubProvider(t *testing.T, vec []float64, wantModel string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Input) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if wantModel != "" && req.Model != wantModel {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": vec}},
		})
	}))
}

func TestClientEmbed(t *testing.T) {
	Convey("Given an embedding client against a stub provider", t, func() {
		ctx := context.Background()
		vec := []float64{0.1, 0.2, 0.3}
		srv := stubProvider(t, vec, "text-embedding-3-small")
		defer srv.Close()

		client := embedding.NewClient("test-key",
			embedding.WithBaseURL(srv.URL),
			embedding.WithDimensions(3),
		)

		Convey("When embedding a normal text", func() {
			got, err := client.Embed(ctx, "Beach cleanup. Category: ENVIRONMENT")

			Convey("Then the provider vector is returned", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, vec)
			})
		})

		Convey("When the text is empty after trimming", func() {
			_, err := client.Embed(ctx, "   \n\t ")
			So(errors.Is(err, embedding.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When the provider returns an unexpected dimensionality", func() {
			narrow := embedding.NewClient("test-key",
				embedding.WithBaseURL(srv.URL),
				embedding.WithDimensions(8),
			)
			_, err := narrow.Embed(ctx, "some text")
			So(errors.Is(err, embedding.ErrDimensionMismatch), ShouldBeTrue)
		})
	})
}

func TestClientProviderFailures(t *testing.T) {
	Convey("Given a failing provider", t, func() {
		ctx := context.Background()

		Convey("When the provider returns a server error", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			}))
			defer srv.Close()

			client := embedding.NewClient("k", embedding.WithBaseURL(srv.URL))
			_, err := client.Embed(ctx, "text")
			So(errors.Is(err, embedding.ErrProviderUnavailable), ShouldBeTrue)
		})

		Convey("When the provider is unreachable", func() {
			client := embedding.NewClient("k", embedding.WithBaseURL("http://127.0.0.1:1"))
			_, err := client.Embed(ctx, "text")
			So(errors.Is(err, embedding.ErrProviderUnavailable), ShouldBeTrue)
		})

		Convey("When the response body is not JSON", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>not json</html>"))
			}))
			defer srv.Close()

			client := embedding.NewClient("k", embedding.WithBaseURL(srv.URL))
			_, err := client.Embed(ctx, "text")
			So(errors.Is(err, embedding.ErrProviderUnavailable), ShouldBeTrue)
		})
	})
}

// flakyEmbedder fails a configurable number of times before recovering.
type flakyEmbedder struct {
	failures int
	calls    int
}

func (f *flakyEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, embedding.ErrProviderUnavailable
	}
	return []float64{1, 0}, nil
}

func TestBreaker(t *testing.T) {
	Convey("Given an embedder behind a circuit breaker", t, func() {
		ctx := context.Background()

		Convey("When the provider keeps failing", func() {
			flaky := &flakyEmbedder{failures: 1000}
			breaker := embedding.NewBreaker(flaky)

			var lastErr error
			for i := 0; i < 20; i++ {
				_, lastErr = breaker.Embed(ctx, "text")
			}

			Convey("Then the breaker opens and stops hammering the provider", func() {
				So(errors.Is(lastErr, embedding.ErrProviderUnavailable), ShouldBeTrue)
				So(flaky.calls, ShouldBeLessThan, 20)
			})
		})

		Convey("When the provider is healthy", func() {
			breaker := embedding.NewBreaker(&flakyEmbedder{})
			vec, err := breaker.Embed(ctx, "text")
			So(err, ShouldBeNil)
			So(vec, ShouldResemble, []float64{1, 0})
		})
	})
}

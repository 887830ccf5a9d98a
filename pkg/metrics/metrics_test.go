package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given metrics manager construction", t, func() {
		Convey("When created with defaults on a fresh registry", func() {
			m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it should carry the service namespace and subsystem", func() {
				So(m, ShouldNotBeNil)
				So(m.namespace, ShouldEqual, "voluntree")
				So(m.subsystem, ShouldEqual, "recommend")
				So(m.enabled, ShouldBeTrue)
			})
		})

		Convey("When created with custom options", func() {
			m := NewManager(
				WithPrometheusRegistry(prometheus.NewRegistry()),
				WithNamespace("custom"),
				WithSubsystem("engine"),
				WithHistogramBuckets([]float64{1, 10, 100}),
			)

			Convey("Then options should be applied", func() {
				So(m.namespace, ShouldEqual, "custom")
				So(m.subsystem, ShouldEqual, "engine")
				So(m.histogramBuckets, ShouldResemble, []float64{1, 10, 100})
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording domain metrics", func() {
			// None of these should panic against the global registry.
			So(func() {
				RecordEmbeddingBuilt("volunteer")
				RecordEmbeddingBuilt("event")
				RecordEmbeddingBuildFailure("event")
				RecordEmbeddingLatency(12.5)
				RecordProviderError()
				RecordDimensionMismatch()
				RecordRecommendationServed()
				RecordRecommendationLatency(3.2)
				RecordCandidatesScored(17)
				RecordColdStart()
				RecordCentroidFallback()
				RecordJobCoalesced()
				UpdateQueueSize(5)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.05)
				UpdateStoreVolunteers(3)
				UpdateStoreEvents(9)
				UpdateStoreSubmissions(4)
				RecordHTTPRequest("recommendations", "GET", "200")
				RecordHTTPRequestDuration("recommendations", "GET", "200", 4.2)
				RecordErrorByComponent("worker", "provider_error")
				RecordErrorByEndpoint("recommendations", "GET", "not_found")
			}, ShouldNotPanic)
		})

		Convey("When fetching the registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}

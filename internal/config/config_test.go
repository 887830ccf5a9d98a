package config_test

import (
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/voluntree/voluntree/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.CoalesceSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.MaxLimit, convey.ShouldEqual, 100)
			convey.So(cfg.DefaultLimit, convey.ShouldEqual, 10)
			convey.So(cfg.CandidateMultiplier, convey.ShouldEqual, 3)
		})

		convey.Convey("Then the interaction weights mirror the scoring ladder", func() {
			convey.So(cfg.InteractionWeights["completed"], convey.ShouldEqual, 3)
			convey.So(cfg.InteractionWeights["registered"], convey.ShouldEqual, 2)
			convey.So(cfg.InteractionWeights["interested"], convey.ShouldEqual, 1)
			convey.So(cfg.InteractionWeights["viewed"], convey.ShouldEqual, 0.5)
		})

		convey.Convey("Then the embedding provider defaults are set", func() {
			convey.So(cfg.Embedding.BaseURL, convey.ShouldEqual, "https://api.openai.com/v1")
			convey.So(cfg.Embedding.Model, convey.ShouldEqual, "text-embedding-3-small")
			convey.So(cfg.Embedding.Dimensions, convey.ShouldEqual, 1536)
			convey.So(cfg.Embedding.TimeoutMS, convey.ShouldEqual, 30_000)
			convey.So(cfg.Embedding.BreakerEnabled, convey.ShouldBeTrue)
		})
	})
}

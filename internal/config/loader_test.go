package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/voluntree/voluntree/internal/config"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"VOLUNTREE_CONFIG",
		"VOLUNTREE_ADDR",
		"VOLUNTREE_LOG_LEVEL",
		"VOLUNTREE_QUEUE_SIZE",
		"VOLUNTREE_WORKER_COUNT",
		"VOLUNTREE_COALESCE_SIZE",
		"VOLUNTREE_MAX_LIMIT",
		"VOLUNTREE_DEFAULT_LIMIT",
		"VOLUNTREE_EMBEDDING_API_KEY",
		"VOLUNTREE_EMBEDDING_MODEL",
		"VOLUNTREE_EMBEDDING_DIMENSIONS",
		"VOLUNTREE_EMBEDDING_BASE_URL",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.Embedding.Model, convey.ShouldEqual, "text-embedding-3-small")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("VOLUNTREE_ADDR", ":8080")
			_ = os.Setenv("VOLUNTREE_QUEUE_SIZE", "500")
			_ = os.Setenv("VOLUNTREE_WORKER_COUNT", "16")
			_ = os.Setenv("VOLUNTREE_EMBEDDING_API_KEY", "sk-test")
			_ = os.Setenv("VOLUNTREE_EMBEDDING_DIMENSIONS", "256")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.Embedding.APIKey, convey.ShouldEqual, "sk-test")
				convey.So(cfg.Embedding.Dimensions, convey.ShouldEqual, 256)
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			clearConfigEnvVars()

			path := filepath.Join(t.TempDir(), "voluntree.yaml")
			yaml := "addr: \":7070\"\nmax_limit: 25\ndefault_limit: 5\nembedding:\n  model: text-embedding-3-large\n  dimensions: 3072\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("VOLUNTREE_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MaxLimit, convey.ShouldEqual, 25)
				convey.So(cfg.DefaultLimit, convey.ShouldEqual, 5)
				convey.So(cfg.Embedding.Model, convey.ShouldEqual, "text-embedding-3-large")
				convey.So(cfg.Embedding.Dimensions, convey.ShouldEqual, 3072)
			})

			convey.Convey("And env vars still win over the file", func() {
				_ = os.Setenv("VOLUNTREE_ADDR", ":6060")
				cfg, err := config.Load(ctx)

				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			clearConfigEnvVars()
			_ = os.Setenv("VOLUNTREE_CONFIG", "/nonexistent/config.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails with a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When validation fails", func() {
			clearConfigEnvVars()
			_ = os.Setenv("VOLUNTREE_DEFAULT_LIMIT", "500")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then the invalid value is rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

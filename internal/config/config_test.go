package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/datastrike/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.DBPath, convey.ShouldEqual, "datastrike.db")
			convey.So(cfg.MaxUploadMB, convey.ShouldEqual, 20)
			convey.So(cfg.MaxConcurrent, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.ParallelViews, convey.ShouldBeTrue)
			convey.So(cfg.ProgressiveThreshold, convey.ShouldEqual, 15.0)
			convey.So(cfg.ProgressiveTopN, convey.ShouldEqual, 10)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then derived values should be converted", func() {
			convey.So(cfg.MaxUploadBytes(), convey.ShouldEqual, int64(20<<20))
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 30*time.Second)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid setting each", t, func() {
		cases := map[string]func(*config.Config){
			"addr":                  func(c *config.Config) { c.Addr = "" },
			"db_path":               func(c *config.Config) { c.DBPath = "" },
			"max_upload_mb":         func(c *config.Config) { c.MaxUploadMB = 0 },
			"max_concurrent":        func(c *config.Config) { c.MaxConcurrent = -1 },
			"progressive_threshold": func(c *config.Config) { c.ProgressiveThreshold = 0 },
			"progressive_top_n":     func(c *config.Config) { c.ProgressiveTopN = 0 },
			"request_timeout_ms":    func(c *config.Config) { c.RequestTimeoutMS = -5 },
			"log_format":            func(c *config.Config) { c.LogFormat = "xml" },
		}

		convey.Convey("Then each should fail validation naming the key", func() {
			for key, mutate := range cases {
				cfg := config.New(context.Background())
				mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, key)
			}
		})
	})
}

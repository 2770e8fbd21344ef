package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/datastrike/internal/config"
)

var configEnvVars = []string{
	config.EnvConfigFile,
	"DATASTRIKE_ADDR",
	"DATASTRIKE_LOG_LEVEL",
	"DATASTRIKE_LOG_FORMAT",
	"DATASTRIKE_UPLOAD_DIR",
	"DATASTRIKE_SEED_TEAMS",
	"DATASTRIKE_SEED_PLAYERS",
	"DATASTRIKE_DB_PATH",
	"DATASTRIKE_MAX_UPLOAD_MB",
	"DATASTRIKE_MAX_CONCURRENT",
	"DATASTRIKE_PARALLEL_VIEWS",
	"DATASTRIKE_PROGRESSIVE_THRESHOLD",
	"DATASTRIKE_PROGRESSIVE_TOP_N",
	"DATASTRIKE_REQUEST_TIMEOUT_MS",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New(ctx))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("DATASTRIKE_ADDR", ":8080")
			_ = os.Setenv("DATASTRIKE_MAX_UPLOAD_MB", "5")
			_ = os.Setenv("DATASTRIKE_PARALLEL_VIEWS", "false")
			_ = os.Setenv("DATASTRIKE_PROGRESSIVE_THRESHOLD", "20.5")
			_ = os.Setenv("DATASTRIKE_PROGRESSIVE_TOP_N", "5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxUploadMB, convey.ShouldEqual, 5)
				convey.So(cfg.ParallelViews, convey.ShouldBeFalse)
				convey.So(cfg.ProgressiveThreshold, convey.ShouldEqual, 20.5)
				convey.So(cfg.ProgressiveTopN, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := createTempConfigFile(t, `
addr: ":9090"
db_path: "/var/lib/datastrike/roster.db"
max_upload_mb: 50
request_timeout_ms: 1000
`)
			_ = os.Setenv(config.EnvConfigFile, path)
			_ = os.Setenv("DATASTRIKE_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")                           // env
				convey.So(cfg.DBPath, convey.ShouldEqual, "/var/lib/datastrike/roster.db") // file
				convey.So(cfg.MaxUploadMB, convey.ShouldEqual, 50)                         // file
				convey.So(cfg.RequestTimeoutMS, convey.ShouldEqual, 1000)                  // file
				convey.So(cfg.ProgressiveTopN, convey.ShouldEqual, 10)                     // default
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv(config.EnvConfigFile, createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv(config.EnvConfigFile, "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("DATASTRIKE_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive upload limit", func() {
			_ = os.Setenv("DATASTRIKE_MAX_UPLOAD_MB", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("DATASTRIKE_MAX_CONCURRENT", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

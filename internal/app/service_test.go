package service_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/datastrike/internal/adapters/repository"
	service "github.com/okian/datastrike/internal/app"
	"github.com/okian/datastrike/internal/domain/model"
	"github.com/okian/datastrike/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["maxUploadBytes"], ShouldEqual, int64(service.DefaultMaxUploadBytes))
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithMaxConcurrent(2),
			service.WithMaxUploadBytes(1024),
			service.WithUploadDir(t.TempDir()),
		)

		Convey("Then the options should be applied", func() {
			stats := svc.GetStats()
			So(stats["maxConcurrent"], ShouldEqual, 2)
			So(stats["maxUploadBytes"], ShouldEqual, int64(1024))
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service backed by a file database", t, func() {
		svc := service.New(service.WithDBPath(filepath.Join(t.TempDir(), "roster.db")))
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started with an empty roster", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["teams"], ShouldEqual, 0)
				So(stats["players"], ShouldEqual, 0)
			})

			Convey("And starting again should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithDBPath(filepath.Join(t.TempDir(), "roster.db")))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})

			Convey("And roster queries should be refused", func() {
				_, err := svc.Teams(ctx)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})

			Convey("And stopping twice should not panic", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})
		})
	})

	Convey("Given a service with an injected store", t, func() {
		ctx := context.Background()
		store, err := repository.Open(ctx, ":memory:", repository.WithMetricsUpdateInterval(0))
		So(err, ShouldBeNil)
		defer store.Close()

		svc := service.New(service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When the service stops", func() {
			svc.Stop()

			Convey("Then the store should remain usable", func() {
				_, _, err := store.Count(ctx)
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestKind(t *testing.T) {
	Convey("Given errors from every layer", t, func() {
		cases := map[error]string{
			nil:                                    "ok",
			model.ErrTooLarge:                      "too_large",
			model.ErrEmptyInput:                    "empty_input",
			fmt.Errorf("read: %w", model.ErrParse): "parse",
			&model.MissingColumnError{Column: "event"}: "missing_column",
			model.ErrInvalidFilter:                     "invalid_filter",
			repository.ErrNotFound:                     "not_found",
			context.DeadlineExceeded:                   "canceled",
			errors.New("boom"):                         "internal",
		}

		Convey("Kind should map each to its label", func() {
			for err, want := range cases {
				So(service.Kind(err), ShouldEqual, want)
			}
		})
	})
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/datastrike/internal/config"
	"github.com/okian/datastrike/internal/domain/kpi"
	"github.com/okian/datastrike/pkg/logger"
)

const (
	teamsCSV   = "id_club,nombre_equipo,imagen_logo\n1,Belgrano,b.png\n2,Talleres,\n"
	playersCSV = "id_jugador,nombre,numcamisa,imagen_jugador,id_club\n10,Rios,9,,1\n20,Diaz,5,,2\n"
	matchCSV   = "periodo,event,id_jugador,x,y,x2,y2,xg\n" +
		"1T,Pase completo,10,20,10,50,10,\n" +
		"1T,Pase incompleto,10,30,50,35,50,\n" +
		"2T,Pase completo,20,40,90,45,90,\n" +
		"2T,Tiro,10,80,50,,,0.4\n"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func run(args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	convey.Convey("Given a fresh roster database and match file", t, func() {
		dir := t.TempDir()
		db := filepath.Join(dir, "roster.db")
		match := writeFile(t, dir, "match.csv", matchCSV)
		teams := writeFile(t, dir, "equipos.csv", teamsCSV)
		players := writeFile(t, dir, "jugadores.csv", playersCSV)

		convey.Convey("When the roster is imported", func() {
			out, err := run("--db", db, "roster", "import", "--teams", teams, "--players", players)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Imported 2 teams and 2 players.")

			convey.Convey("Then teams and players are listed", func() {
				out, err := run("--db", db, "roster", "list")
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Talleres")

				out, err = run("--db", db, "roster", "list", "--team", "1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Rios")
				convey.So(out, convey.ShouldNotContainSubstring, "Diaz")
			})

			convey.Convey("Then team KPIs are computed as JSON", func() {
				out, err := run("--db", db, "kpis", match, "--team", "1", "--json", "--raw")
				convey.So(err, convey.ShouldBeNil)

				var rep kpi.Report
				convey.So(json.Unmarshal([]byte(out), &rep), convey.ShouldBeNil)
				convey.So(rep.General.Eventos, convey.ShouldEqual, 3)
				convey.So(rep.General.PasesTotales, convey.ShouldEqual, 2)
				convey.So(len(rep.Eventos), convey.ShouldEqual, 3)
			})

			convey.Convey("Then KPI tables are printed", func() {
				out, err := run("--db", db, "kpis", match)
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "50.00%")
				convey.So(out, convey.ShouldContainSubstring, "Rios")
			})
		})

		convey.Convey("When an empty roster is listed", func() {
			out, err := run("--db", db, "roster", "list")

			convey.Convey("Then a hint is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "No teams stored yet")
			})
		})

		convey.Convey("When periods are summarized", func() {
			out, err := run("--db", db, "periods", match, "--json")
			convey.So(err, convey.ShouldBeNil)

			var periods map[string]kpi.PeriodSummary
			convey.So(json.Unmarshal([]byte(out), &periods), convey.ShouldBeNil)

			convey.Convey("Then each period is counted", func() {
				convey.So(periods["1T"].Pases, convey.ShouldEqual, 2)
				convey.So(periods["2T"].Tiros, convey.ShouldEqual, 1)
				convey.So(periods["2T"].XGTotal, convey.ShouldAlmostEqual, 0.4, 1e-9)
			})
		})

		convey.Convey("When a file is missing", func() {
			_, err := run("--db", db, "kpis", filepath.Join(dir, "nope.csv"))

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the config is invalid", func() {
			_ = os.Setenv("DATASTRIKE_MAX_UPLOAD_MB", "0")
			defer func() { _ = os.Unsetenv("DATASTRIKE_MAX_UPLOAD_MB") }()

			_, err := run("--db", db, "roster", "list")

			convey.Convey("Then loading fails before the command runs", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "failed to load config")
			})
		})
	})
}

func TestServeHandler(t *testing.T) {
	convey.Convey("Given the server handler", t, func() {
		_ = logger.Init()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cfg := config.New(ctx)
		cfg.DBPath = filepath.Join(t.TempDir(), "roster.db")
		svc := newService(cfg)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		h := newHandler(ctx, cfg, svc)

		convey.Convey("Then the console, health, docs and roster routes respond", func() {
			for _, path := range []string{"/", "/healthz", "/api-docs", "/openapi.yaml", "/api/equipos"} {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then a request id is echoed", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			convey.So(rec.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
		})
	})
}

func TestServeShutdown(t *testing.T) {
	convey.Convey("Given a server on a random port", t, func() {
		_ = logger.Init()
		cfg := config.New(context.Background())
		cfg.Addr = "127.0.0.1:0"
		cfg.DBPath = filepath.Join(t.TempDir(), "roster.db")

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- serve(ctx, cfg) }()
			time.Sleep(100 * time.Millisecond)
			cancel()

			convey.Convey("Then serve returns cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(10 * time.Second):
					t.Fatal("serve did not return")
				}
			})
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		convey.Convey("Then updating system metrics does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then the updater returns when its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}

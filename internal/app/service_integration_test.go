package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/datastrike/internal/adapters/repository"
	service "github.com/okian/datastrike/internal/app"
	"github.com/okian/datastrike/internal/domain/kpi"
	"github.com/okian/datastrike/internal/domain/model"
)

const (
	teamsCSV = "id_club,nombre_equipo,imagen_logo\n" +
		"1,Belgrano,belgrano.png\n" +
		"2,Talleres,\n"

	playersCSV = "id_jugador;nombre;numcamisa;imagen_jugador;id_club\n" +
		"10;Rios;9;rios.png;1\n" +
		"11;Paz;1;;1\n" +
		"20;Diaz;5;;2\n"

	matchCSV = "event,id_jugador,x,y,x2,y2,xg\n" +
		"Pase completo,10,20,10,50,10,\n" +
		"Pase incompleto,10,30,50,35,50,\n" +
		"Pase completo,20,40,90,45,90,\n" +
		"Tiro,11,80,50,,,0.3\n"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func uploads(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service with a seeded roster", t, func() {
		dir := t.TempDir()
		uploadDir := filepath.Join(dir, "uploads")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		svc := service.New(
			service.WithDBPath(filepath.Join(dir, "roster.db")),
			service.WithUploadDir(uploadDir),
			service.WithSeedFiles(
				writeFile(t, dir, "equipos.csv", teamsCSV),
				writeFile(t, dir, "jugadores.csv", playersCSV),
			),
			service.WithAggregatorOptions(kpi.WithParallel(false)),
		)
		defer svc.Stop()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("The roster should be seeded on start", func() {
			teams, err := svc.Teams(ctx)
			So(err, ShouldBeNil)
			So(teams, ShouldHaveLength, 2)
			So(teams[0].Nombre, ShouldEqual, "Belgrano")
			So(teams[0].LogoURL, ShouldEqual, "belgrano.png")

			players, err := svc.PlayersByTeam(ctx, 1)
			So(err, ShouldBeNil)
			So(players, ShouldHaveLength, 2)
			So(players[0].Nombre, ShouldEqual, "Paz")
		})

		Convey("Players of an unknown team should be not found", func() {
			_, err := svc.PlayersByTeam(ctx, 99)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Importing the same sheets again should add nothing", func() {
			teams, players, err := svc.ImportRoster(ctx,
				filepath.Join(dir, "equipos.csv"), filepath.Join(dir, "jugadores.csv"))
			So(err, ShouldBeNil)
			So(teams, ShouldEqual, 0)
			So(players, ShouldEqual, 0)
		})

		Convey("When a match file is uploaded for team 1", func() {
			rep, err := svc.TeamKPIs(ctx, 1, "partido.csv", strings.NewReader(matchCSV))

			Convey("Then only the team's events should be counted", func() {
				So(err, ShouldBeNil)
				So(rep.General.Eventos, ShouldEqual, 3)
				So(rep.General.PasesTotales, ShouldEqual, 2)
				So(rep.General.PasesCompletados, ShouldEqual, 1)
				So(rep.General.PctPaseCompletado, ShouldEqual, 50.0)
				So(rep.PorPeriodo, ShouldContainKey, string(model.PeriodFirst))
				So(rep.PasesProgresivos.Counts(), ShouldResemble, map[int64]int{10: 1})
				So(rep.Eventos, ShouldHaveLength, 3)
			})

			Convey("And players should carry roster names", func() {
				So(rep.PorJugador["10"].Jugador, ShouldEqual, "Rios")
				So(rep.PorJugador["10"].ImagenJugador, ShouldEqual, "rios.png")
				So(rep.PorJugador["11"].XG, ShouldEqual, 0.3)
			})

			Convey("And the spooled upload should be removed", func() {
				So(uploads(t, uploadDir), ShouldBeEmpty)
			})
		})

		Convey("When a match file is uploaded for an unknown team", func() {
			_, err := svc.TeamKPIs(ctx, 99, "partido.csv", strings.NewReader(matchCSV))

			Convey("Then it should be rejected before spooling", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a team has no events in the file", func() {
			body := "event,id_jugador\nPase completo,20\n"
			_, err := svc.TeamKPIs(ctx, 1, "partido.csv", strings.NewReader(body))

			Convey("Then the filter should be invalid", func() {
				So(errors.Is(err, model.ErrInvalidFilter), ShouldBeTrue)
				So(service.Kind(err), ShouldEqual, "invalid_filter")
			})
		})

		Convey("When the upload lacks an event column", func() {
			_, err := svc.PeriodKPIs(ctx, "partido.csv", strings.NewReader("foo,bar\n1,2\n"))

			Convey("Then a missing column error should be returned", func() {
				So(errors.Is(err, model.ErrMissingColumn), ShouldBeTrue)
				So(uploads(t, uploadDir), ShouldBeEmpty)
			})
		})

		Convey("When a match file is summarized per period", func() {
			out, err := svc.PeriodKPIs(ctx, "partido.csv", strings.NewReader(matchCSV))

			Convey("Then every event should land in the first period", func() {
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, 1)
				s := out[string(model.PeriodFirst)]
				So(s.Eventos, ShouldEqual, 4)
				So(s.Pases, ShouldEqual, 3)
				So(s.Tiros, ShouldEqual, 1)
				So(s.Goles, ShouldEqual, 0)
				So(s.XGTotal, ShouldAlmostEqual, 0.3, 1e-9)
			})
		})

		Convey("When a file on disk is computed without a team", func() {
			rep, err := svc.FileKPIs(ctx, writeFile(t, dir, "partido.csv", matchCSV), 0)

			Convey("Then all events should be counted with roster names", func() {
				So(err, ShouldBeNil)
				So(rep.General.Eventos, ShouldEqual, 4)
				So(rep.PorJugador["20"].Jugador, ShouldEqual, "Diaz")
			})
		})

		Convey("Stats should report the roster and computations", func() {
			_, err := svc.PeriodKPIs(ctx, "partido.csv", strings.NewReader(matchCSV))
			So(err, ShouldBeNil)

			stats := svc.GetStats()
			So(stats["teams"], ShouldEqual, 2)
			So(stats["players"], ShouldEqual, 3)
			So(stats["computations"], ShouldEqual, int64(1))
			So(stats["failures"], ShouldEqual, int64(0))
		})
	})
}

func TestServiceUploadLimit(t *testing.T) {
	Convey("Given a service with a tiny upload limit", t, func() {
		ctx := context.Background()
		uploadDir := t.TempDir()
		store, err := repository.Open(ctx, ":memory:", repository.WithMetricsUpdateInterval(0))
		So(err, ShouldBeNil)
		defer store.Close()

		svc := service.New(
			service.WithStore(store),
			service.WithUploadDir(uploadDir),
			service.WithMaxUploadBytes(16),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When an oversized file is uploaded", func() {
			_, err := svc.PeriodKPIs(ctx, "partido.csv", strings.NewReader(matchCSV))

			Convey("Then it should be rejected and not left on disk", func() {
				So(errors.Is(err, model.ErrTooLarge), ShouldBeTrue)
				So(uploads(t, uploadDir), ShouldBeEmpty)
			})
		})

		Convey("When the context is already canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.PeriodKPIs(cctx, "a.csv", strings.NewReader("event\nTiro\n"))

			Convey("Then the computation should report cancellation", func() {
				So(service.Kind(err), ShouldEqual, "canceled")
			})
		})
	})
}

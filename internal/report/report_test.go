package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/datastrike/internal/domain/classify"
	"github.com/okian/datastrike/internal/domain/kpi"
	"github.com/okian/datastrike/internal/domain/roster"
	"github.com/okian/datastrike/internal/report"
)

func TestPrintResult(t *testing.T) {
	convey.Convey("Given a KPI result with every section", t, func() {
		res := &kpi.Result{
			General: kpi.General{Eventos: 3, PasesTotales: 2, PasesCompletados: 1, PctPaseCompletado: 50},
			PorPeriodo: map[string]kpi.PeriodStats{
				"2T": {Eventos: 1},
				"1T": {Eventos: 2, Pases: 2, PctCompletado: 50, PctPerdida: 50},
			},
			PorCarril: map[classify.Lane]kpi.LaneStats{classify.LaneCentral: {PctCompletado: 100}},
			PorJugador: map[string]kpi.PlayerStats{
				"10": {Jugador: "Ana", EventosTotal: 2, XG: 0.3},
				"7":  {EventosTotal: 1},
			},
			PasesProgresivos: kpi.Ranking{{PlayerID: 10, Count: 1}},
		}

		var buf bytes.Buffer
		report.PrintResult(&buf, res)
		out := buf.String()

		convey.Convey("Then each section is rendered", func() {
			convey.So(out, convey.ShouldContainSubstring, "50.00%")
			convey.So(out, convey.ShouldContainSubstring, "central")
			convey.So(out, convey.ShouldContainSubstring, "Ana")
			convey.So(out, convey.ShouldContainSubstring, "0.30")
		})

		convey.Convey("Then periods are printed in token order", func() {
			convey.So(strings.Index(out, "1T"), convey.ShouldBeLessThan, strings.Index(out, "2T"))
		})
	})

	convey.Convey("Given a result with only totals", t, func() {
		var buf bytes.Buffer
		report.PrintResult(&buf, &kpi.Result{General: kpi.General{Eventos: 1}})

		convey.Convey("Then the optional sections are skipped", func() {
			convey.So(buf.String(), convey.ShouldNotContainSubstring, "CARRIL")
			convey.So(buf.String(), convey.ShouldNotContainSubstring, "JUGADOR")
		})
	})
}

func TestPrintPeriodSummaries(t *testing.T) {
	convey.Convey("Given period summaries", t, func() {
		var buf bytes.Buffer
		report.PrintPeriodSummaries(&buf, map[string]kpi.PeriodSummary{
			"1T": {Eventos: 4, Pases: 3, Tiros: 1, XGTotal: 0.3},
		})

		convey.Convey("Then the row carries every count", func() {
			out := buf.String()
			convey.So(out, convey.ShouldContainSubstring, "1T")
			convey.So(out, convey.ShouldContainSubstring, "0.30")
		})
	})
}

func TestPrintRoster(t *testing.T) {
	convey.Convey("Given teams and players", t, func() {
		num := 9
		var buf bytes.Buffer
		report.PrintTeams(&buf, []roster.Team{{ID: 1, Nombre: "Leones", Liga: "Primera"}})
		report.PrintPlayersOf(&buf, []roster.Player{{ID: 10, Nombre: "Ana", Numero: &num}, {ID: 11, Nombre: "Bea"}})

		convey.Convey("Then names and numbers are listed", func() {
			out := buf.String()
			convey.So(out, convey.ShouldContainSubstring, "Leones")
			convey.So(out, convey.ShouldContainSubstring, "Ana")
			convey.So(out, convey.ShouldContainSubstring, "Bea")
		})
	})
}

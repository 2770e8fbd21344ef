package kpi_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/datastrike/internal/domain/kpi"
	"github.com/okian/datastrike/internal/domain/model"
)

func TestPeriodSummaries(t *testing.T) {
	ctx := context.Background()
	agg := kpi.New()

	Convey("Given events from both halves", t, func() {
		tbl := table([]string{"evento", "periodo", "xg"},
			[]string{"Pase completo", "1T", ""},
			[]string{"Tiro", "1T", "0.25"},
			[]string{"Gol", "2T", "0.5"},
			[]string{"Remate bloqueado", "2T", "x"},
			[]string{"Goleador celebra", "2T", ""},
		)

		Convey("When summarizing", func() {
			out, err := agg.PeriodSummaries(ctx, tbl)

			Convey("Then each period should count passes, shots and goals", func() {
				So(err, ShouldBeNil)
				So(out["1T"], ShouldResemble, kpi.PeriodSummary{Eventos: 2, Pases: 1, Tiros: 1, Goles: 0, XGTotal: 0.25})
				So(out["2T"], ShouldResemble, kpi.PeriodSummary{Eventos: 3, Pases: 0, Tiros: 1, Goles: 1, XGTotal: 0.5})
			})
		})
	})

	Convey("Given an empty table", t, func() {
		_, err := agg.PeriodSummaries(ctx, model.NewTable("event", "periodo"))

		So(errors.Is(err, model.ErrEmptyInput), ShouldBeTrue)
	})

	Convey("Given a table without periodo", t, func() {
		_, err := agg.PeriodSummaries(ctx, table([]string{"event"}, []string{"Tiro"}))

		So(errors.Is(err, model.ErrMissingColumn), ShouldBeTrue)
	})
}

func TestRawEvents(t *testing.T) {
	Convey("Given rows with partial coordinates", t, func() {
		tbl := table([]string{"type", "periodo", "x", "y"},
			[]string{"Pase", "1T", "12.5", ""},
			[]string{"", "1T", "", "40"},
		)

		out, err := kpi.RawEvents(tbl)

		Convey("Then nulls should become zero and labels keep their column", func() {
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 2)
			So(out[0], ShouldResemble, kpi.RawEvent{"x": 12.5, "y": 0.0, "x2": 0.0, "y2": 0.0, "type": "Pase"})
			So(out[1]["type"], ShouldEqual, "")
			So(out[1]["y"], ShouldEqual, 40.0)
		})
	})

	Convey("Given a table without an event column", t, func() {
		_, err := kpi.RawEvents(table([]string{"x"}, []string{"1"}))

		So(errors.Is(err, model.ErrMissingColumn), ShouldBeTrue)
	})
}

func TestReportJSON(t *testing.T) {
	Convey("Given a report built from a result and its events", t, func() {
		tbl := table([]string{"evento", "periodo"}, []string{"Pase completo", "1T"})
		res, err := kpi.New().Compute(context.Background(), tbl)
		So(err, ShouldBeNil)
		events, err := kpi.RawEvents(tbl)
		So(err, ShouldBeNil)

		b, err := json.Marshal(kpi.Report{Result: res, Eventos: events})
		So(err, ShouldBeNil)

		Convey("Then result sections and events should share one object", func() {
			var doc map[string]json.RawMessage
			So(json.Unmarshal(b, &doc), ShouldBeNil)
			So(doc, ShouldContainKey, "general")
			So(doc, ShouldContainKey, "por_periodo")
			So(doc, ShouldContainKey, "eventos")
			So(doc, ShouldNotContainKey, "por_carril")
		})
	})
}

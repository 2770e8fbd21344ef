// Package kpi aggregates classified match events into KPI views.
//
// The five views of a Result (general, per period, per lane, per player and
// the progressive pass ranking) read the same immutable table and each write
// a disjoint section, so they can be computed concurrently.
package kpi

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/datastrike/internal/domain/classify"
	"github.com/okian/datastrike/internal/domain/model"
)

const unknownPlayer = "Desconocido"

// Aggregator computes KPI results. It is safe for concurrent use.
type Aggregator struct {
	classifier           *classify.Classifier
	observer             Observer
	parallel             bool
	progressiveThreshold float64
	topN                 int
}

// New creates an Aggregator with the default classifier, parallel views,
// a progressive threshold of 15 and a top 10 ranking.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		classifier:           classify.New(),
		parallel:             true,
		progressiveThreshold: DefaultProgressiveThreshold,
		topN:                 DefaultTopN,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// frame is a table with its resolved event column and per-row flags.
type frame struct {
	t        *model.Table
	eventCol string
	flags    []classify.Flags
}

func (a *Aggregator) prepare(t *model.Table) (*frame, error) {
	eventCol, err := t.EventColumn()
	if err != nil {
		return nil, err
	}
	if !t.HasColumn(model.ColPeriod) {
		return nil, &model.MissingColumnError{Column: model.ColPeriod, Aliases: []string{model.ColPeriod}}
	}
	flags, err := a.classifier.Table(t)
	if err != nil {
		return nil, err
	}
	return &frame{t: t, eventCol: eventCol, flags: flags}, nil
}

// Compute builds every view whose prerequisite columns are present. A missing
// event or periodo column fails the whole computation.
func (a *Aggregator) Compute(ctx context.Context, t *model.Table) (*Result, error) {
	f, err := a.prepare(t)
	if err != nil {
		return nil, err
	}
	if a.observer != nil {
		a.observer.ObserveDiagnostics(ctx, tabulateLaterPeriods(t, f.eventCol))
	}

	res := &Result{}
	views := []func() error{
		func() error { res.General = general(f); return nil },
		func() error { res.PorPeriodo = byPeriod(f); return nil },
		func() error { res.PorCarril = byLane(f); return nil },
		func() error { res.PorJugador = byPlayer(f); return nil },
		func() error { res.PasesProgresivos = a.progressive(f); return nil },
	}

	if !a.parallel {
		for _, view := range views {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := view(); err != nil {
				return nil, err
			}
		}
		return res, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, view := range views {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return view()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// passCounter accumulates the pass figures shared by several views.
type passCounter struct {
	events    int
	passes    int
	completed int
	failed    int
}

func (c *passCounter) add(fl classify.Flags) {
	c.events++
	if !fl.Has(classify.Pass) {
		return
	}
	c.passes++
	if fl.Has(classify.PassSuccessful) {
		c.completed++
	}
	if fl.Has(classify.PassFailed) {
		c.failed++
	}
}

func general(f *frame) General {
	var c passCounter
	var lost, won int
	for _, fl := range f.flags {
		c.add(fl)
		if fl.Has(classify.LostPossession) {
			lost++
		}
		if fl.Has(classify.WonPossession) {
			won++
		}
	}
	return General{
		Eventos:            c.events,
		PasesTotales:       c.passes,
		PasesCompletados:   c.completed,
		PctPaseCompletado:  pct(c.completed, c.passes),
		PctPasePerdido:     pct(c.failed, c.passes),
		PctPerdidasTotales: pct(lost, c.events),
		PctJugadasGanadas:  pct(won, won+lost),
	}
}

// byPeriod groups rows by their periodo token. Rows with a null period are
// not part of any group.
func byPeriod(f *frame) map[string]PeriodStats {
	groups := make(map[string]*passCounter)
	for i, r := range f.t.Rows {
		p := r.Get(model.ColPeriod)
		if p.IsNull() {
			continue
		}
		c, ok := groups[p.String()]
		if !ok {
			c = &passCounter{}
			groups[p.String()] = c
		}
		c.add(f.flags[i])
	}
	out := make(map[string]PeriodStats, len(groups))
	for p, c := range groups {
		out[p] = PeriodStats{
			Eventos:       c.events,
			Pases:         c.passes,
			PctCompletado: pct(c.completed, c.passes),
			PctPerdida:    pct(c.failed, c.passes),
		}
	}
	return out
}

// byLane needs a y column; rows whose y is not numeric are skipped.
func byLane(f *frame) map[classify.Lane]LaneStats {
	if !f.t.HasColumn(model.ColY) {
		return nil
	}
	groups := make(map[classify.Lane]*passCounter, len(classify.Lanes))
	for i, r := range f.t.Rows {
		lane, ok := classify.LaneOfRow(r)
		if !ok {
			continue
		}
		c, ok := groups[lane]
		if !ok {
			c = &passCounter{}
			groups[lane] = c
		}
		c.add(f.flags[i])
	}
	out := make(map[classify.Lane]LaneStats, len(groups))
	for lane, c := range groups {
		out[lane] = LaneStats{
			PctCompletado: pct(c.completed, c.passes),
			PctPerdida:    pct(c.failed, c.passes),
		}
	}
	return out
}

// byPlayer needs a player id column; rows without an integral id are skipped.
// Display fields come from the group's first row; a null name there
// becomes unknownPlayer.
func byPlayer(f *frame) map[string]PlayerStats {
	idCol, ok := f.t.PlayerIDColumn()
	if !ok {
		return nil
	}
	hasName := f.t.HasColumn(model.ColPlayerName)
	hasImage := f.t.HasColumn(model.ColPlayerImage)

	out := make(map[string]PlayerStats)
	for _, r := range f.t.Rows {
		id, ok := r.Get(idCol).Int()
		if !ok {
			continue
		}
		key := strconv.FormatInt(id, 10)
		ps, seen := out[key]
		if !seen {
			ps = PlayerStats{EventosPorTipo: make(map[string]int)}
			if hasName {
				ps.Jugador = r.Get(model.ColPlayerName).String()
			}
			if hasImage {
				ps.ImagenJugador = r.Get(model.ColPlayerImage).String()
			}
		}
		ps.EventosTotal++
		if label := r.Get(f.eventCol); !label.IsNull() {
			ps.EventosPorTipo[strings.ToLower(label.String())]++
		}
		ps.XG += r.Get(model.ColXG).FloatOr(0)
		out[key] = ps
	}
	for key, ps := range out {
		if ps.Jugador == "" {
			ps.Jugador = unknownPlayer
			out[key] = ps
		}
	}
	return out
}

// progressive ranks players by passes moving the ball forward by more than
// the threshold. It needs x, x2 and a player id column.
func (a *Aggregator) progressive(f *frame) Ranking {
	idCol, ok := f.t.PlayerIDColumn()
	if !ok || !f.t.HasColumns(model.ColX, model.ColX2) {
		return nil
	}
	counts := make(map[int64]int)
	for i, r := range f.t.Rows {
		if !f.flags[i].Has(classify.Pass) {
			continue
		}
		x, okX := r.Get(model.ColX).Float()
		x2, okX2 := r.Get(model.ColX2).Float()
		if !okX || !okX2 || x2-x <= a.progressiveThreshold {
			continue
		}
		id, ok := r.Get(idCol).Int()
		if !ok {
			continue
		}
		counts[id]++
	}
	ranking := make(Ranking, 0, len(counts))
	for id, n := range counts {
		ranking = append(ranking, RankEntry{PlayerID: id, Count: n})
	}
	sortRanking(ranking)
	if len(ranking) > a.topN {
		ranking = ranking[:a.topN]
	}
	return ranking
}

func sortRanking(r Ranking) {
	sort.Slice(r, func(i, j int) bool {
		if r[i].Count != r[j].Count {
			return r[i].Count > r[j].Count
		}
		return r[i].PlayerID < r[j].PlayerID
	})
}

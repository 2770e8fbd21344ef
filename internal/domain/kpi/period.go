package kpi

import (
	"context"
	"fmt"

	"github.com/okian/datastrike/internal/domain/classify"
	"github.com/okian/datastrike/internal/domain/model"
)

// PeriodSummary is the per-period match summary.
type PeriodSummary struct {
	Eventos int     `json:"eventos"`
	Pases   int     `json:"pases"`
	Tiros   int     `json:"tiros"`
	Goles   int     `json:"goles"`
	XGTotal float64 `json:"xg_total"`
}

// PeriodSummaries computes events, passes, shots, goals and summed xg per
// periodo token. An empty table is rejected.
func (a *Aggregator) PeriodSummaries(ctx context.Context, t *model.Table) (map[string]PeriodSummary, error) {
	if t.Len() == 0 {
		return nil, fmt.Errorf("%w: no events to summarize", model.ErrEmptyInput)
	}
	f, err := a.prepare(t)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]PeriodSummary)
	for i, r := range t.Rows {
		p := r.Get(model.ColPeriod)
		if p.IsNull() {
			continue
		}
		s := out[p.String()]
		s.Eventos++
		fl := f.flags[i]
		if fl.Has(classify.Pass) {
			s.Pases++
		}
		if fl.Has(classify.Shot) {
			s.Tiros++
		}
		if fl.Has(classify.Goal) {
			s.Goles++
		}
		s.XGTotal += r.Get(model.ColXG).FloatOr(0)
		out[p.String()] = s
	}
	return out, nil
}

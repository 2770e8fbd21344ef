package kpi

import "github.com/okian/datastrike/internal/domain/model"

// RawEvent is an event projected for pitch visualizations.
type RawEvent map[string]any

// Report is a KPI result together with the events it was computed from.
type Report struct {
	*Result
	Eventos []RawEvent `json:"eventos"`
}

// RawEvents projects every row onto x, y, x2, y2 and the event column, with
// missing coordinates as 0 and missing labels as "".
func RawEvents(t *model.Table) ([]RawEvent, error) {
	eventCol, err := t.EventColumn()
	if err != nil {
		return nil, err
	}
	out := make([]RawEvent, 0, t.Len())
	for _, r := range t.Rows {
		out = append(out, RawEvent{
			model.ColX:  r.Get(model.ColX).FloatOr(0),
			model.ColY:  r.Get(model.ColY).FloatOr(0),
			model.ColX2: r.Get(model.ColX2).FloatOr(0),
			model.ColY2: r.Get(model.ColY2).FloatOr(0),
			eventCol:    r.Get(eventCol).String(),
		})
	}
	return out, nil
}

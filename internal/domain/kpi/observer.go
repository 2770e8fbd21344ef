package kpi

import (
	"context"
	"sort"
	"strings"

	"github.com/okian/datastrike/internal/domain/model"
)

// Observer receives side-channel diagnostics produced during aggregation.
// Implementations must not retain the slices after returning.
type Observer interface {
	ObserveDiagnostics(ctx context.Context, d Diagnostics)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, d Diagnostics)

// ObserveDiagnostics calls f(ctx, d).
func (f ObserverFunc) ObserveDiagnostics(ctx context.Context, d Diagnostics) { f(ctx, d) }

// LabelCount is the number of rows sharing a period and label.
type LabelCount struct {
	Period string
	Label  string
	Count  int
}

// Diagnostics tabulates rows outside the first period by (period, label),
// most frequent first.
type Diagnostics struct {
	Rows   int
	Counts []LabelCount
}

// firstPeriod reports whether a period token denotes the first period.
// Any token containing "1" qualifies.
func firstPeriod(p model.Cell) bool {
	return !p.IsNull() && strings.Contains(p.String(), "1")
}

func tabulateLaterPeriods(t *model.Table, eventCol string) Diagnostics {
	type key struct{ period, label string }
	counts := make(map[key]int)
	var d Diagnostics
	for _, r := range t.Rows {
		p := r.Get(model.ColPeriod)
		if firstPeriod(p) {
			continue
		}
		d.Rows++
		counts[key{p.String(), r.Get(eventCol).String()}]++
	}
	for k, n := range counts {
		d.Counts = append(d.Counts, LabelCount{Period: k.period, Label: k.label, Count: n})
	}
	sort.Slice(d.Counts, func(i, j int) bool {
		a, b := d.Counts[i], d.Counts[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		return a.Label < b.Label
	})
	return d
}

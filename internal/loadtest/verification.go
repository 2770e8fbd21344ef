package loadtest

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/datastrike/internal/domain/kpi"
)

const xgTolerance = 1e-6

// verify compares a returned period summary with the generated one.
func verify(m Match, got map[string]kpi.PeriodSummary) error {
	if len(got) != len(m.Expected) {
		return fmt.Errorf("%s: got %d periods, want %d", m.Name, len(got), len(m.Expected))
	}
	keys := make([]string, 0, len(m.Expected))
	for k := range m.Expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, p := range keys {
		want := m.Expected[p]
		have, ok := got[p]
		if !ok {
			return fmt.Errorf("%s: period %s missing", m.Name, p)
		}
		if have.Eventos != want.Eventos || have.Pases != want.Pases ||
			have.Tiros != want.Tiros || have.Goles != want.Goles {
			return fmt.Errorf("%s: period %s: got %+v, want %+v", m.Name, p, have, want)
		}
		if math.Abs(have.XGTotal-want.XGTotal) > xgTolerance {
			return fmt.Errorf("%s: period %s: xg_total %.4f, want %.4f", m.Name, p, have.XGTotal, want.XGTotal)
		}
	}
	return nil
}

package kpi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/okian/datastrike/internal/domain/classify"
)

// Result is the KPI document for one computation. Sections whose input
// columns are missing stay nil and are omitted from JSON; a section whose
// columns exist encodes as {} when nothing qualifies.
type Result struct {
	General          General                     `json:"general"`
	PorPeriodo       map[string]PeriodStats      `json:"por_periodo"`
	PorCarril        map[classify.Lane]LaneStats `json:"por_carril,omitzero"`
	PorJugador       map[string]PlayerStats      `json:"por_jugador,omitzero"`
	PasesProgresivos Ranking                     `json:"pases_progresivos,omitzero"`
}

// General holds whole-table totals.
type General struct {
	Eventos            int     `json:"eventos"`
	PasesTotales       int     `json:"pases_totales"`
	PasesCompletados   int     `json:"pases_completados"`
	PctPaseCompletado  float64 `json:"pct_pase_completado"`
	PctPasePerdido     float64 `json:"pct_pase_perdido"`
	PctPerdidasTotales float64 `json:"pct_perdidas_totales"`
	PctJugadasGanadas  float64 `json:"pct_jugadas_ganadas"`
}

// PeriodStats is the per-period breakdown.
type PeriodStats struct {
	Eventos       int     `json:"eventos"`
	Pases         int     `json:"pases"`
	PctCompletado float64 `json:"pct_completado"`
	PctPerdida    float64 `json:"pct_perdida"`
}

// LaneStats is the pass quality within a lane.
type LaneStats struct {
	PctCompletado float64 `json:"pct_completado"`
	PctPerdida    float64 `json:"pct_perdida"`
}

// PlayerStats is the per-player breakdown.
type PlayerStats struct {
	Jugador        string         `json:"jugador"`
	ImagenJugador  string         `json:"imagen_jugador"`
	EventosTotal   int            `json:"eventos_total"`
	EventosPorTipo map[string]int `json:"eventos_por_tipo"`
	XG             float64        `json:"xg"`
}

// RankEntry is one row of the progressive pass ranking.
type RankEntry struct {
	PlayerID int64
	Count    int
}

// Ranking is ordered by count descending, then player id ascending. It
// encodes as a JSON object whose keys keep that order.
type Ranking []RankEntry

// MarshalJSON writes {"<player_id>": count, ...} in ranking order.
func (r Ranking) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.FormatInt(e.PlayerID, 10))
		buf.WriteString(`":`)
		buf.WriteString(strconv.Itoa(e.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object form. Key order is not recoverable through
// encoding/json, so entries are re-sorted by the ranking order.
func (r *Ranking) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	out := make(Ranking, 0, len(m))
	for k, v := range m {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return err
		}
		out = append(out, RankEntry{PlayerID: id, Count: v})
	}
	sortRanking(out)
	*r = out
	return nil
}

// Counts returns the ranking as a map keyed by player id.
func (r Ranking) Counts() map[int64]int {
	m := make(map[int64]int, len(r))
	for _, e := range r {
		m[e.PlayerID] = e.Count
	}
	return m
}

// pct returns num/den*100 rounded to two decimals, or 0 when den is 0.
func pct(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round2(float64(num) / float64(den) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package loadtest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/datastrike/internal/domain/kpi"
)

// Match is one generated match export and the summary it must produce.
type Match struct {
	Name     string
	Body     []byte
	Expected map[string]kpi.PeriodSummary
}

type label struct {
	text             string
	pass, shot, goal bool
}

var vocabulary = []label{
	{text: "Pase completo", pass: true},
	{text: "Pase completo", pass: true},
	{text: "Pase incompleto", pass: true},
	{text: "Pase filtrado", pass: true},
	{text: "Centro incompleto", pass: true},
	{text: "Duelo ganado"},
	{text: "Duelo perdido"},
	{text: "Regate fallido"},
	{text: "Balon aereo ganado"},
	{text: "Tiro", shot: true},
	{text: "Remate", shot: true},
	{text: "Gol", goal: true},
}

var periods = []string{"1T", "2T"}

var header = []string{"periodo", "evento", "id_jugador", "x", "y", "x2", "y2", "xg"}

// Generate builds n match files of the given size. Equal seeds produce
// identical files apart from their names.
func Generate(seed uint64, n, events int) ([]Match, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]Match, 0, n)
	for range n {
		m, err := generateMatch(rng, events)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func generateMatch(rng *rand.Rand, events int) (Match, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return Match{}, fmt.Errorf("write header: %w", err)
	}

	expected := make(map[string]kpi.PeriodSummary, len(periods))
	for i := range events {
		period := periods[i*len(periods)/events]
		l := vocabulary[rng.IntN(len(vocabulary))]
		s := expected[period]
		s.Eventos++

		xg := ""
		switch {
		case l.pass:
			s.Pases++
		case l.shot:
			s.Tiros++
		case l.goal:
			s.Goles++
		}
		if l.shot || l.goal {
			v := float64(1+rng.IntN(60)) / 100
			s.XGTotal += v
			xg = strconv.FormatFloat(v, 'f', 2, 64)
		}
		expected[period] = s

		x, y := rng.IntN(101), rng.IntN(101)
		row := []string{
			period,
			l.text,
			strconv.Itoa(1 + rng.IntN(22)),
			strconv.Itoa(x),
			strconv.Itoa(y),
			strconv.Itoa(min(100, x+rng.IntN(30))),
			strconv.Itoa(rng.IntN(101)),
			xg,
		}
		if err := w.Write(row); err != nil {
			return Match{}, fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Match{}, fmt.Errorf("flush: %w", err)
	}
	return Match{
		Name:     "match-" + uuid.NewString() + ".csv",
		Body:     buf.Bytes(),
		Expected: expected,
	}, nil
}

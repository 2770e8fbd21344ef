// Package report renders KPI results as terminal tables.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/okian/datastrike/internal/domain/classify"
	"github.com/okian/datastrike/internal/domain/kpi"
	"github.com/okian/datastrike/internal/domain/roster"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func pct(v float64) string { return fmt.Sprintf("%.2f%%", v) }

// PrintResult writes every non-empty section of res.
func PrintResult(w io.Writer, res *kpi.Result) {
	PrintGeneral(w, res.General)
	if len(res.PorPeriodo) > 0 {
		fmt.Fprintln(w)
		PrintPeriods(w, res.PorPeriodo)
	}
	if len(res.PorCarril) > 0 {
		fmt.Fprintln(w)
		PrintLanes(w, res.PorCarril)
	}
	if len(res.PorJugador) > 0 {
		fmt.Fprintln(w)
		PrintPlayers(w, res.PorJugador)
	}
	if len(res.PasesProgresivos) > 0 {
		fmt.Fprintln(w)
		PrintRanking(w, res.PasesProgresivos)
	}
}

// PrintGeneral prints the whole-table totals as a two-column table.
func PrintGeneral(w io.Writer, g kpi.General) {
	table := newTable(w)
	table.Header("KPI", "VALUE")
	table.Append("eventos", strconv.Itoa(g.Eventos))
	table.Append("pases_totales", strconv.Itoa(g.PasesTotales))
	table.Append("pases_completados", strconv.Itoa(g.PasesCompletados))
	table.Append("pct_pase_completado", pct(g.PctPaseCompletado))
	table.Append("pct_pase_perdido", pct(g.PctPasePerdido))
	table.Append("pct_perdidas_totales", pct(g.PctPerdidasTotales))
	table.Append("pct_jugadas_ganadas", pct(g.PctJugadasGanadas))
	table.Render()
}

// PrintPeriods prints the per-period pass breakdown ordered by period token.
func PrintPeriods(w io.Writer, periods map[string]kpi.PeriodStats) {
	table := newTable(w)
	table.Header("PERIODO", "EVENTOS", "PASES", "COMPLETADO", "PERDIDA")
	for _, p := range sortedKeys(periods) {
		s := periods[p]
		table.Append(p, strconv.Itoa(s.Eventos), strconv.Itoa(s.Pases), pct(s.PctCompletado), pct(s.PctPerdida))
	}
	table.Render()
}

// PrintLanes prints pass quality for each lane, left to right.
func PrintLanes(w io.Writer, lanes map[classify.Lane]kpi.LaneStats) {
	table := newTable(w)
	table.Header("CARRIL", "COMPLETADO", "PERDIDA")
	for _, l := range classify.Lanes {
		s, ok := lanes[l]
		if !ok {
			continue
		}
		table.Append(string(l), pct(s.PctCompletado), pct(s.PctPerdida))
	}
	table.Render()
}

// PrintPlayers prints one row per player ordered by event count, most
// active first.
func PrintPlayers(w io.Writer, players map[string]kpi.PlayerStats) {
	keys := sortedKeys(players)
	sort.SliceStable(keys, func(i, j int) bool {
		return players[keys[i]].EventosTotal > players[keys[j]].EventosTotal
	})

	table := newTable(w)
	table.Header("ID", "JUGADOR", "EVENTOS", "XG")
	for _, k := range keys {
		s := players[k]
		name := s.Jugador
		if name == "" {
			name = "—"
		}
		table.Append(k, name, strconv.Itoa(s.EventosTotal), fmt.Sprintf("%.2f", s.XG))
	}
	table.Render()
}

// PrintRanking prints the progressive pass ranking in order.
func PrintRanking(w io.Writer, r kpi.Ranking) {
	table := newTable(w)
	table.Header("#", "ID_JUGADOR", "PASES_PROGRESIVOS")
	for i, e := range r {
		table.Append(strconv.Itoa(i+1), strconv.FormatInt(e.PlayerID, 10), strconv.Itoa(e.Count))
	}
	table.Render()
}

// PrintPeriodSummaries prints the per-period match summary.
func PrintPeriodSummaries(w io.Writer, periods map[string]kpi.PeriodSummary) {
	table := newTable(w)
	table.Header("PERIODO", "EVENTOS", "PASES", "TIROS", "GOLES", "XG_TOTAL")
	for _, p := range sortedKeys(periods) {
		s := periods[p]
		table.Append(p,
			strconv.Itoa(s.Eventos),
			strconv.Itoa(s.Pases),
			strconv.Itoa(s.Tiros),
			strconv.Itoa(s.Goles),
			fmt.Sprintf("%.2f", s.XGTotal),
		)
	}
	table.Render()
}

// PrintTeams lists the roster's teams.
func PrintTeams(w io.Writer, teams []roster.Team) {
	table := newTable(w)
	table.Header("ID", "NOMBRE", "LIGA")
	for _, t := range teams {
		table.Append(strconv.FormatInt(t.ID, 10), t.Nombre, t.Liga)
	}
	table.Render()
}

// PrintPlayersOf lists a team's squad.
func PrintPlayersOf(w io.Writer, players []roster.Player) {
	table := newTable(w)
	table.Header("ID", "NOMBRE", "NUMERO")
	for _, p := range players {
		num := "—"
		if p.Numero != nil {
			num = strconv.Itoa(*p.Numero)
		}
		table.Append(strconv.FormatInt(p.ID, 10), p.Nombre, num)
	}
	table.Render()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

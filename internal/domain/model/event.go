// Package model contains the canonical event table passed between the
// loader, classifier and aggregator.
package model

import (
	"math"
	"strconv"
	"strings"
)

// Canonical lower-case column names. Loaders normalize headers before any of
// these are looked up.
const (
	ColPeriod      = "periodo"
	ColX           = "x"
	ColY           = "y"
	ColX2          = "x2"
	ColY2          = "y2"
	ColXG          = "xg"
	ColPlayerID    = "id_jugador"
	ColPlayerIDAlt = "player_id"
	ColPlayerName  = "jugador"
	ColPlayerImage = "imagen_jugador"
	ColTeamID      = "id_club"
)

// EventColumnAliases are the accepted names for the free-text event label.
var EventColumnAliases = []string{"event", "evento", "type"}

// Period identifies a match segment.
type Period string

// Canonical period tokens.
const (
	PeriodFirst  Period = "1T"
	PeriodSecond Period = "2T"
	PeriodExtra  Period = "ET"
)

// Cell is a single nullable table value kept as its source text. The zero
// Cell is null.
type Cell struct {
	text  string
	valid bool
}

// Text returns a non-null cell. Blank text is treated as null, mirroring how
// spreadsheet exports encode missing values.
func Text(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{text: s, valid: true}
}

// Null returns an empty cell.
func Null() Cell { return Cell{} }

// Number returns a cell holding the formatted float.
func Number(f float64) Cell {
	return Cell{text: strconv.FormatFloat(f, 'f', -1, 64), valid: true}
}

// IsNull reports whether the cell has no value.
func (c Cell) IsNull() bool { return !c.valid }

// String returns the raw text, or "" for null cells.
func (c Cell) String() string { return c.text }

// Float parses the cell as a number. Comma decimal separators are accepted.
// Non-numeric, NaN and infinite values report ok=false.
func (c Cell) Float() (float64, bool) {
	if !c.valid {
		return 0, false
	}
	s := strings.TrimSpace(c.text)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if !strings.Contains(s, ",") || strings.Contains(s, ".") {
			return 0, false
		}
		f, err = strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FloatOr returns the numeric value or def when the cell is not numeric.
func (c Cell) FloatOr(def float64) float64 {
	if f, ok := c.Float(); ok {
		return f
	}
	return def
}

// Int parses the cell as an integral identifier. Spreadsheet ids often come
// through as "7.0", so integral floats are accepted.
func (c Cell) Int() (int64, bool) {
	f, ok := c.Float()
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// Row maps column names to cells. Missing keys read as null.
type Row map[string]Cell

// Get returns the cell for col, null when absent.
func (r Row) Get(col string) Cell { return r[col] }

// Table is an ordered sequence of rows over a union of column names.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	t := &Table{}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether col is part of the schema.
func (t *Table) HasColumn(col string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// HasColumns reports whether every col is part of the schema.
func (t *Table) HasColumns(cols ...string) bool {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return false
		}
	}
	return true
}

// AddColumn appends col to the schema if it is not already present.
func (t *Table) AddColumn(col string) {
	if !t.HasColumn(col) {
		t.Columns = append(t.Columns, col)
	}
}

// Append adds a row, extending the schema with any new columns.
func (t *Table) Append(r Row) {
	for col := range r {
		if !t.HasColumn(col) {
			t.Columns = append(t.Columns, col)
		}
	}
	t.Rows = append(t.Rows, r)
}

// Concat appends all rows of other, keeping column order of first appearance.
// Rows from a table lacking a column read that column as null.
func (t *Table) Concat(other *Table) {
	if other == nil {
		return
	}
	for _, c := range other.Columns {
		t.AddColumn(c)
	}
	t.Rows = append(t.Rows, other.Rows...)
}

// Filter returns a new table with the same schema holding rows where keep is true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// ResolveColumn returns the first schema column whose name matches one of the
// aliases case-insensitively, honouring schema order.
func (t *Table) ResolveColumn(aliases ...string) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, c := range t.Columns {
		lc := strings.ToLower(c)
		for _, a := range aliases {
			if lc == a {
				return c, true
			}
		}
	}
	return "", false
}

// EventColumn resolves the event-label column.
func (t *Table) EventColumn() (string, error) {
	if col, ok := t.ResolveColumn(EventColumnAliases...); ok {
		return col, nil
	}
	return "", &MissingColumnError{Column: "event", Aliases: EventColumnAliases}
}

// PlayerIDColumn resolves the player identifier column.
func (t *Table) PlayerIDColumn() (string, bool) {
	return t.ResolveColumn(ColPlayerID, ColPlayerIDAlt)
}

// NormalizeColumnName trims and lower-cases a header.
func NormalizeColumnName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

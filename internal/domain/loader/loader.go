// Package loader reads match event exports (XLSX workbooks or delimited text)
// into the canonical event table.
//
// Every sheet is normalized independently (trimmed, lower-cased headers and an
// explicit periodo column inferred from the sheet name) and the sheets are
// unioned by column superset.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/okian/datastrike/internal/domain/model"
)

// Format identifies the physical layout of an export.
type Format int

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatWorkbook
	FormatDelimited
)

const sniffSize = 512

var zipMagic = []byte("PK\x03\x04")

// Load reads an event export and checks that an event-label column exists.
func Load(ctx context.Context, path string) (*model.Table, error) {
	t, err := ReadTable(ctx, path)
	if err != nil {
		return nil, err
	}
	if _, err := t.EventColumn(); err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// ReadTable reads any supported spreadsheet into a normalized table without
// requiring event columns. Roster imports use it directly.
func ReadTable(ctx context.Context, path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(sniffSize)

	switch DetectFormat(path, head) {
	case FormatWorkbook:
		return ReadWorkbook(ctx, br)
	case FormatDelimited:
		return ReadCSV(ctx, br)
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrParse, filepath.Base(path))
	}
}

// DetectFormat picks a format from the file extension, falling back to the
// leading bytes for unknown extensions.
func DetectFormat(name string, head []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatWorkbook
	case ".csv", ".txt", ".tsv":
		return FormatDelimited
	case ".xls", ".ods", ".pdf", ".json":
		return FormatUnknown
	}
	if bytes.HasPrefix(head, zipMagic) {
		return FormatWorkbook
	}
	if len(head) > 0 && utf8.Valid(trimPartialRune(head)) && !bytes.ContainsRune(head, 0) {
		return FormatDelimited
	}
	return FormatUnknown
}

// trimPartialRune drops a multi-byte sequence cut by the sniff window.
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size != 1 {
			break
		}
		b = b[:len(b)-1]
	}
	return b
}

// ReadWorkbook reads every sheet of an XLSX workbook. Sheets without columns
// or data rows are skipped; the remaining sheets are tagged with the period
// inferred from their name.
func ReadWorkbook(ctx context.Context, r io.Reader) (*model.Table, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", model.ErrParse, err)
	}
	defer wb.Close()

	out := &model.Table{}
	for _, sheet := range wb.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Number formats only affect display; read the stored values.
		rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", model.ErrParse, sheet, err)
		}
		t := buildTable(rows)
		if t == nil {
			continue
		}
		tagPeriod(t, InferPeriod(sheet))
		out.Concat(t)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheet with data", model.ErrEmptyInput)
	}
	return out, nil
}

// ReadCSV reads a flat delimited export. All rows belong to the first period.
// Comma is the default separator; a header holding only semicolons or tabs
// switches to that separator.
func ReadCSV(ctx context.Context, r io.Reader) (*model.Table, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("%w: read csv: %v", model.ErrParse, err)
	}

	cr := csv.NewReader(br)
	cr.Comma = detectDelimiter(header)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read csv: %v", model.ErrParse, err)
		}
		records = append(records, rec)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}

	t := buildTable(records)
	if t == nil {
		return nil, fmt.Errorf("%w: csv has no data rows", model.ErrEmptyInput)
	}
	tagPeriod(t, model.PeriodFirst)
	return t, nil
}

func detectDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	if bytes.IndexByte(line, ',') >= 0 {
		return ','
	}
	if bytes.IndexByte(line, ';') >= 0 {
		return ';'
	}
	if bytes.IndexByte(line, '\t') >= 0 {
		return '\t'
	}
	return ','
}

// buildTable turns raw records (header first) into a table. It returns nil
// when there is no named column or no non-blank data row.
func buildTable(records [][]string) *model.Table {
	if len(records) == 0 {
		return nil
	}
	columns := headerColumns(records[0])
	named := 0
	for _, c := range columns {
		if c != "" {
			named++
		}
	}
	if named == 0 {
		return nil
	}

	t := &model.Table{}
	for _, c := range columns {
		if c != "" {
			t.AddColumn(c)
		}
	}
	for _, rec := range records[1:] {
		row := make(model.Row, named)
		blank := true
		for i, col := range columns {
			if col == "" {
				continue
			}
			cell := model.Null()
			if i < len(rec) {
				cell = model.Text(rec[i])
			}
			if !cell.IsNull() {
				blank = false
			}
			row[col] = cell
		}
		if !blank {
			t.Rows = append(t.Rows, row)
		}
	}
	if len(t.Rows) == 0 {
		return nil
	}
	return t
}

// headerColumns normalizes header cells. Blank headers stay blank and are
// dropped; repeated names get a ".N" suffix.
func headerColumns(header []string) []string {
	seen := make(map[string]int, len(header))
	cols := make([]string, len(header))
	for i, h := range header {
		name := model.NormalizeColumnName(h)
		if name == "" {
			continue
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n)
		} else {
			seen[name] = 1
		}
		cols[i] = name
	}
	return cols
}

// tagPeriod sets the periodo column on every row, replacing any value the
// export carried.
func tagPeriod(t *model.Table, p model.Period) {
	t.AddColumn(model.ColPeriod)
	for _, r := range t.Rows {
		r[model.ColPeriod] = model.Text(string(p))
	}
}

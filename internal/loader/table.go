// Package loader reads the tabular inputs of a report run into header-named
// rows and decodes them into domain records.
package loader

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/rgehrsitz/opioid-eda/internal/errors"
)

// Options controls how a source file is opened
type Options struct {
	// Sheet selects the worksheet of an .xlsx source; empty means the first.
	Sheet string
	// HeaderRow is the 1-based row holding column names. Zero picks the
	// first non-empty row.
	HeaderRow int
}

// Table is an ordered sequence of rows sharing one header
type Table struct {
	Source  string
	Columns []string
	Rows    []Row

	colIdx map[string]int
}

// Row is one data line of a Table
type Row struct {
	// Line is the 1-based line (or sheet row) the data came from
	Line  int
	table *Table
	cells []string
}

// Open reads a CSV or Excel source. Any failure to read it is a
// SourceUnavailable error.
func Open(path string, opts Options) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return openExcel(path, opts)
	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, errors.SourceUnavailable(path, err)
		}
		defer file.Close()
		return ReadCSV(path, file, opts)
	}
}

// ReadCSV reads delimited text from r. source names the input in errors.
func ReadCSV(source string, r io.Reader, opts Options) (*Table, error) {
	bufReader := bufio.NewReaderSize(r, 256*1024)

	// Skip UTF-8 BOM if present
	bom, err := bufReader.Peek(3)
	if err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.SourceUnavailable(source, err)
		}
		records = append(records, rec)
	}
	return newTable(source, records, opts)
}

func openExcel(path string, opts Options) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.SourceUnavailable(path, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.SourceUnavailable(path, fmt.Errorf("workbook has no sheets"))
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.SourceUnavailable(path, fmt.Errorf("sheet %q: %w", sheet, err))
	}
	return newTable(path, rows, opts)
}

func newTable(source string, records [][]string, opts Options) (*Table, error) {
	headerAt := -1
	if opts.HeaderRow > 0 {
		if opts.HeaderRow > len(records) {
			return nil, errors.SourceUnavailable(source, fmt.Errorf("header row %d beyond end of data", opts.HeaderRow))
		}
		headerAt = opts.HeaderRow - 1
	} else {
		for i, rec := range records {
			if !isBlank(rec) {
				headerAt = i
				break
			}
		}
	}
	if headerAt < 0 {
		return nil, errors.SourceUnavailable(source, fmt.Errorf("no header row"))
	}

	t := &Table{Source: source, colIdx: make(map[string]int)}
	for i, h := range records[headerAt] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.Columns = append(t.Columns, h)
		if _, dup := t.colIdx[h]; !dup && h != "" {
			t.colIdx[h] = i
		}
	}

	for i := headerAt + 1; i < len(records); i++ {
		if isBlank(records[i]) {
			continue
		}
		t.Rows = append(t.Rows, Row{Line: i + 1, table: t, cells: records[i]})
	}
	return t, nil
}

// Has reports whether the table carries a column
func (t *Table) Has(col string) bool {
	_, ok := t.colIdx[col]
	return ok
}

// Require fails with SchemaMismatch naming every absent column
func (t *Table) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return errors.SchemaMismatch(t.Source, missing)
	}
	return nil
}

// Len is the number of data rows
func (t *Table) Len() int { return len(t.Rows) }

// String returns the trimmed cell for col, or "" if absent
func (r Row) String(col string) string {
	i, ok := r.table.colIdx[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// Int coerces the cell for col to an integer. Integral decimals such as
// "2020.0" are accepted.
func (r Row) Int(col string) (int64, error) {
	s := cleanNumber(r.String(col))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("line %d: column %s: %q is not an integer", r.Line, col, r.String(col))
	}
	return d.IntPart(), nil
}

// Decimal coerces the cell for col to a number
func (r Row) Decimal(col string) (decimal.Decimal, error) {
	s := cleanNumber(r.String(col))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("line %d: column %s: %q is not a number", r.Line, col, r.String(col))
	}
	return d, nil
}

// NullDecimal is Decimal for measurements that may be suppressed: a blank
// or suppression marker yields an invalid value, not an error.
func (r Row) NullDecimal(col string) (decimal.NullDecimal, error) {
	if isSuppressed(r.String(col)) {
		return decimal.NullDecimal{}, nil
	}
	d, err := r.Decimal(col)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func cleanNumber(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

func isSuppressed(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "n/a", "null", "*", "suppressed", "-":
		return true
	}
	return false
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

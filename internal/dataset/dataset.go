// Package dataset loads employee tables from delimited files and SQLite databases.
package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/empdash/internal/model"
	"github.com/verte-zerg/empdash/internal/store"
)

// Source identifies a dataset. SQLiteTable is only used for SQLite files.
type Source struct {
	Path        string
	SQLiteTable string
}

func (s Source) String() string {
	if s.IsSQLite() {
		table := s.SQLiteTable
		if table == "" {
			table = store.DefaultTable
		}
		return s.Path + "#" + table
	}
	return s.Path
}

// IsSQLite reports whether the source is read through SQLite.
func (s Source) IsSQLite() bool {
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// DataSourceError reports an unreadable or malformed dataset.
// Row is 1-based over data rows and 0 when the error is not row specific.
type DataSourceError struct {
	Source string
	Row    int
	Column string
	Err    error
}

func (e *DataSourceError) Error() string {
	var b strings.Builder
	b.WriteString("data source")
	if e.Source != "" {
		fmt.Fprintf(&b, " %s", e.Source)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %q", e.Column)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// Load reads the source into a table.
func Load(ctx context.Context, src Source) (model.Table, error) {
	if src.Path == "" {
		return model.Table{}, &DataSourceError{Err: errors.New("source path is empty")}
	}
	var (
		header []string
		rows   [][]string
		kinds  []model.Kind
		err    error
	)
	if src.IsSQLite() {
		header, rows, kinds, err = readSQLite(ctx, src)
	} else {
		header, rows, err = readDelimited(src.Path)
	}
	if err != nil {
		return model.Table{}, &DataSourceError{Source: src.String(), Err: err}
	}
	tbl, err := fromRows(header, rows, kinds)
	if err != nil {
		var dsErr *DataSourceError
		if errors.As(err, &dsErr) {
			dsErr.Source = src.String()
			return model.Table{}, dsErr
		}
		return model.Table{}, &DataSourceError{Source: src.String(), Err: err}
	}
	return tbl, nil
}

func readSQLite(ctx context.Context, src Source) ([]string, [][]string, []model.Kind, error) {
	st, err := store.OpenExisting(src.Path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			// Best-effort close for a read-only source.
			_ = cerr
		}
	}()
	return st.ReadTable(ctx, src.SQLiteTable)
}

func readDelimited(path string) ([]string, [][]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = delimiterFor(path, content)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, errors.New("missing header row")
		}
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read rows: %w", err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func delimiterFor(path string, content []byte) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return ','
	}
	return sniffDelimiter(scanner.Text())
}

func sniffDelimiter(line string) rune {
	best := ','
	bestCount := strings.Count(line, ",")
	for _, d := range []rune{';', '\t', '|'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best = d
			bestCount = n
		}
	}
	return best
}

// FromRows builds a table from a header and text cells. Extension column
// kinds are inferred from the cells.
func FromRows(header []string, rows [][]string) (model.Table, error) {
	return fromRows(header, rows, nil)
}

// FromRowsWithKinds is FromRows with the extension column kinds given
// instead of inferred. kinds is indexed like header; core columns keep
// their fixed kinds.
func FromRowsWithKinds(header []string, rows [][]string, kinds []model.Kind) (model.Table, error) {
	if len(kinds) != len(header) {
		return model.Table{}, &DataSourceError{Err: fmt.Errorf("expected %d column kinds, got %d", len(header), len(kinds))}
	}
	return fromRows(header, rows, kinds)
}

func fromRows(header []string, rows [][]string, kinds []model.Kind) (model.Table, error) {
	names := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			return model.Table{}, &DataSourceError{Err: fmt.Errorf("column %d has an empty name", i+1)}
		}
		if _, dup := index[name]; dup {
			return model.Table{}, &DataSourceError{Column: name, Err: errors.New("duplicate column")}
		}
		names[i] = name
		index[name] = i
	}
	var missing []string
	for _, req := range model.RequiredColumns {
		if _, ok := index[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return model.Table{}, &DataSourceError{Err: fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))}
	}

	for r, row := range rows {
		if len(row) > len(names) {
			return model.Table{}, &DataSourceError{Row: r + 1, Err: fmt.Errorf("expected %d fields, got %d", len(names), len(row))}
		}
	}
	cell := func(row []string, col int) string {
		if col < len(row) {
			return strings.TrimSpace(row[col])
		}
		return ""
	}

	extraCols := make([]int, 0, len(names))
	columns := make([]model.Column, len(names))
	for i, name := range names {
		columns[i] = model.Column{Name: name, Kind: coreKind(name)}
		if !model.IsCoreColumn(name) {
			extraCols = append(extraCols, i)
		}
	}
	for _, col := range extraCols {
		if kinds != nil {
			columns[col].Kind = kinds[col]
			continue
		}
		columns[col].Kind = inferKind(rows, col, cell)
	}

	records := make([]model.Record, 0, len(rows))
	for r, row := range rows {
		rec := model.Record{
			Name:       cell(row, index[model.ColName]),
			Department: cell(row, index[model.ColDepartment]),
		}
		var err error
		if rec.Salary, err = parseMeasure(cell(row, index[model.ColSalary])); err != nil {
			return model.Table{}, &DataSourceError{Row: r + 1, Column: model.ColSalary, Err: err}
		}
		if rec.Salary < 0 {
			return model.Table{}, &DataSourceError{Row: r + 1, Column: model.ColSalary, Err: fmt.Errorf("negative salary %v", rec.Salary)}
		}
		if rec.PerformanceScore, err = parseMeasure(cell(row, index[model.ColPerformance])); err != nil {
			return model.Table{}, &DataSourceError{Row: r + 1, Column: model.ColPerformance, Err: err}
		}
		if rec.YearJoined, err = parseYear(cell(row, index[model.ColYearJoined])); err != nil {
			return model.Table{}, &DataSourceError{Row: r + 1, Column: model.ColYearJoined, Err: err}
		}
		if len(extraCols) > 0 {
			rec.Extra = make([]any, len(extraCols))
			for k, col := range extraCols {
				if rec.Extra[k], err = parseCell(cell(row, col), columns[col].Kind); err != nil {
					return model.Table{}, &DataSourceError{Row: r + 1, Column: columns[col].Name, Err: err}
				}
			}
		}
		records = append(records, rec)
	}
	return model.Table{Columns: columns, Records: records}, nil
}

func coreKind(name string) model.Kind {
	switch name {
	case model.ColSalary, model.ColPerformance:
		return model.KindFloat
	case model.ColYearJoined:
		return model.KindInt
	default:
		return model.KindText
	}
}

func inferKind(rows [][]string, col int, cell func([]string, int) string) model.Kind {
	kind := model.KindInt
	seen := false
	for _, row := range rows {
		v := cell(row, col)
		if v == "" {
			continue
		}
		seen = true
		if kind == model.KindInt {
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				continue
			}
			kind = model.KindFloat
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return model.KindText
		}
	}
	if !seen {
		return model.KindText
	}
	return kind
}

func parseCell(v string, kind model.Kind) (any, error) {
	if v == "" {
		return nil, nil
	}
	switch kind {
	case model.KindInt:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", v)
		}
		return n, nil
	case model.KindFloat:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", v)
		}
		return f, nil
	default:
		return v, nil
	}
}

func parseMeasure(v string) (float64, error) {
	if v == "" {
		return 0, errors.New("value is empty")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", v)
	}
	return f, nil
}

func parseYear(v string) (int, error) {
	if v == "" {
		return 0, errors.New("value is empty")
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid year %q", v)
	}
	return int(f), nil
}

// Package export writes table views as spreadsheet workbooks.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/empdash/internal/dataset"
	"github.com/verte-zerg/empdash/internal/model"
)

const (
	// SheetName is the single worksheet of an export.
	SheetName = "Sheet1"
	// DefaultFilename is the suggested download name.
	DefaultFilename = "employee_filtered.xlsx"
	// ContentType is the MIME type of the workbook bytes.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// kindsName is the workbook defined name holding the column kinds as a
	// quoted, comma separated string constant.
	kindsName = "EmpdashColumnKinds"
)

// SerializationError reports a value the workbook cannot hold.
// Row is 1-based over data rows.
type SerializationError struct {
	Column string
	Row    int
	Type   string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot export column %q row %d: unsupported type %s", e.Column, e.Row, e.Type)
}

// Serialize renders tbl as a single-sheet xlsx workbook: header row,
// then data rows in order, no index column.
func Serialize(tbl model.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the in-memory workbook.
			_ = cerr
		}
	}()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet: %w", err)
	}
	header := make([]any, len(tbl.Columns))
	for i, name := range tbl.Header() {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < tbl.Len(); i++ {
		row := tbl.Row(i)
		for c, v := range row {
			cell, ok := cellValue(v)
			if !ok {
				return nil, &SerializationError{Column: tbl.Columns[c].Name, Row: i + 1, Type: fmt.Sprintf("%T", v)}
			}
			row[c] = cell
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(axis, row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}
	if len(tbl.Columns) > 0 {
		if err := f.SetDefinedName(&excelize.DefinedName{
			Name:     kindsName,
			RefersTo: encodeKinds(tbl.Columns),
		}); err != nil {
			return nil, fmt.Errorf("failed to record column kinds: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellValue(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case string:
		if val == "" {
			return nil, true
		}
		return val, true
	case bool, float32, float64, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return val, true
	default:
		return nil, false
	}
}

// Deserialize reads a workbook produced by Serialize back into a table.
func Deserialize(data []byte) (model.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the in-memory workbook.
			_ = cerr
		}
	}()

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) == 0 {
		return model.Table{}, fmt.Errorf("sheet %s is empty", SheetName)
	}
	kinds, ok, err := readKinds(f)
	if err != nil {
		return model.Table{}, err
	}
	if !ok {
		return dataset.FromRows(rows[0], rows[1:])
	}
	return dataset.FromRowsWithKinds(rows[0], rows[1:], kinds)
}

func encodeKinds(cols []model.Column) string {
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Kind.String()
	}
	return `"` + strings.Join(names, ",") + `"`
}

// readKinds returns the column kinds recorded by Serialize. ok is false for
// workbooks written elsewhere.
func readKinds(f *excelize.File) ([]model.Kind, bool, error) {
	for _, dn := range f.GetDefinedName() {
		if dn.Name != kindsName {
			continue
		}
		raw := strings.Trim(strings.TrimPrefix(dn.RefersTo, "="), `"`)
		parts := strings.Split(raw, ",")
		kinds := make([]model.Kind, len(parts))
		for i, p := range parts {
			k, ok := model.ParseKind(p)
			if !ok {
				return nil, false, fmt.Errorf("unknown column kind %q", p)
			}
			kinds[i] = k
		}
		return kinds, true, nil
	}
	return nil, false, nil
}

// WriteFile stores data at path through a temporary file in the same
// directory, so readers never observe a partial workbook.
func WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

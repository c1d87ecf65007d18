package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/empdash/internal/dataset"
	"github.com/verte-zerg/empdash/internal/model"
)

func mixedTable(t *testing.T) model.Table {
	t.Helper()
	tbl, err := dataset.FromRows(
		[]string{"EmployeeID", "Name", "Department", "Salary", "PerformanceScore", "YearJoined", "Office", "Bonus"},
		[][]string{
			{"1", "Ann", "Eng", "100000", "5", "2020", "Berlin", "1500.5"},
			{"2", "Bob", "Sales", "120000.75", "3", "2019", "", "0"},
			{"3", "", "HR", "60000", "2.5", "2021", "Lisbon", ""},
		},
	)
	require.NoError(t, err)
	return tbl
}

func TestSerializeRoundTrip(t *testing.T) {
	tbl := mixedTable(t)

	data, err := Serialize(tbl)
	require.NoError(t, err)

	got, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, tbl, got)
}

func TestSerializeRoundTripKeepsColumnKinds(t *testing.T) {
	tbl, err := dataset.FromRows(
		[]string{"Name", "Department", "Salary", "PerformanceScore", "YearJoined", "Bonus", "Badge"},
		[][]string{
			{"Ann", "Eng", "100000", "5", "2020", "1.0", "7"},
			{"Bob", "Sales", "120000", "3", "2019", "2.0", "x"},
		},
	)
	require.NoError(t, err)
	require.Equal(t, model.KindFloat, tbl.Columns[5].Kind)
	require.Equal(t, model.KindText, tbl.Columns[6].Kind)

	data, err := Serialize(tbl)
	require.NoError(t, err)
	got, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, tbl, got)
	assert.Equal(t, float64(1), got.Records[0].Extra[0])
	assert.Equal(t, "7", got.Records[0].Extra[1])
}

func TestDeserializeInfersKindsForForeignWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	require.NoError(t, f.SetSheetRow(SheetName, "A1", &[]any{"Name", "Department", "Salary", "PerformanceScore", "YearJoined", "Bonus"}))
	require.NoError(t, f.SetSheetRow(SheetName, "A2", &[]any{"Ann", "Eng", 100000, 5, 2020, 3}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, err := Deserialize(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, model.KindInt, got.Columns[5].Kind)
	assert.Equal(t, int64(3), got.Records[0].Extra[0])
}

func TestSerializeLayout(t *testing.T) {
	data, err := Serialize(mixedTable(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"EmployeeID", "Name", "Department", "Salary", "PerformanceScore", "YearJoined", "Office", "Bonus"}, rows[0])
	assert.Equal(t, "Ann", rows[1][1])
	assert.Equal(t, "Bob", rows[2][1])
}

func TestSerializeEmptyTableKeepsHeader(t *testing.T) {
	tbl := mixedTable(t).WithRecords(nil)

	data, err := Serialize(tbl)
	require.NoError(t, err)

	got, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, tbl.Header(), got.Header())
	assert.Equal(t, 0, got.Len())
}

func TestSerializeRejectsUnsupportedType(t *testing.T) {
	tbl := model.Table{
		Columns: []model.Column{
			{Name: model.ColName},
			{Name: model.ColDepartment},
			{Name: model.ColSalary, Kind: model.KindFloat},
			{Name: model.ColPerformance, Kind: model.KindFloat},
			{Name: model.ColYearJoined, Kind: model.KindInt},
			{Name: "Tags"},
		},
		Records: []model.Record{
			{Name: "Ann", Department: "Eng", Salary: 1, PerformanceScore: 1, YearJoined: 2020, Extra: []any{"ok"}},
			{Name: "Bob", Department: "Eng", Salary: 1, PerformanceScore: 1, YearJoined: 2020, Extra: []any{[]string{"a", "b"}}},
		},
	}

	_, err := Serialize(tbl)
	var serErr *SerializationError
	require.True(t, errors.As(err, &serErr))
	assert.Equal(t, "Tags", serErr.Column)
	assert.Equal(t, 2, serErr.Row)
	assert.Equal(t, "[]string", serErr.Type)
}

func TestDeserializeGarbage(t *testing.T) {
	_, err := Deserialize([]byte("not a workbook"))
	assert.Error(t, err)
}

func TestWriteFileReplacesTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", DefaultFilename)
	require.NoError(t, WriteFile(path, []byte("first")))
	require.NoError(t, WriteFile(path, []byte("second")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/verte-zerg/empdash/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "employees.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestWriteReadTable(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	tbl := model.Table{
		Columns: []model.Column{
			{Name: model.ColName},
			{Name: model.ColDepartment},
			{Name: model.ColSalary, Kind: model.KindFloat},
			{Name: model.ColPerformance, Kind: model.KindFloat},
			{Name: model.ColYearJoined, Kind: model.KindInt},
			{Name: `Bonus "pct"`, Kind: model.KindFloat},
		},
		Records: []model.Record{
			{Name: "Ann", Department: "Eng", Salary: 100000, PerformanceScore: 4.5, YearJoined: 2020, Extra: []any{nil}},
			{Name: "Bob", Department: "Sales", Salary: 1, PerformanceScore: 3, YearJoined: 2019, Extra: []any{2.5}},
		},
	}
	if err := st.WriteTable(ctx, "", tbl); err != nil {
		t.Fatalf("write: %v", err)
	}

	header, rows, kinds, err := st.ReadTable(ctx, DefaultTable)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(header, tbl.Header()) {
		t.Fatalf("header = %v, want %v", header, tbl.Header())
	}
	wantRows := [][]string{
		{"Ann", "Eng", "100000", "4.5", "2020", ""},
		{"Bob", "Sales", "1", "3", "2019", "2.5"},
	}
	if !reflect.DeepEqual(rows, wantRows) {
		t.Fatalf("rows = %q, want %q", rows, wantRows)
	}
	wantKinds := []model.Kind{model.KindText, model.KindText, model.KindFloat, model.KindFloat, model.KindInt, model.KindFloat}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Fatalf("kinds = %v, want %v", kinds, wantKinds)
	}
}

func TestWriteTableReplacesTable(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	cols := []model.Column{{Name: model.ColName}, {Name: model.ColDepartment}}
	first := model.Table{Columns: cols, Records: []model.Record{{Name: "Ann", Department: "Eng"}, {Name: "Bob", Department: "Ops"}}}
	if err := st.WriteTable(ctx, "staff", first); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := st.WriteTable(ctx, "staff", first.WithRecords(first.Records[:1])); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	_, rows, _, err := st.ReadTable(ctx, "staff")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != "Ann" {
		t.Fatalf("rows = %q, want only Ann", rows)
	}
}

func TestReadTableUndeclaredTypesHaveNoKinds(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	if _, err := st.db.ExecContext(ctx, `CREATE TABLE employees (Name VARCHAR(20), Salary)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := st.db.ExecContext(ctx, `INSERT INTO employees VALUES ('Ann', 1.5), (NULL, 2)`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, rows, kinds, err := st.ReadTable(ctx, "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if kinds != nil {
		t.Fatalf("kinds = %v, want nil", kinds)
	}
	want := [][]string{{"Ann", "1.5"}, {"", "2"}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %q, want %q", rows, want)
	}
}

func TestReadTableMissing(t *testing.T) {
	st := openTemp(t)
	if _, _, _, err := st.ReadTable(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for missing table")
	}
}

func TestOpenExistingMissingFile(t *testing.T) {
	if _, err := OpenExisting(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Fatalf("expected error for missing database")
	}
}

func TestQuoteIdent(t *testing.T) {
	cases := map[string]string{
		"employees":   `"employees"`,
		`Bonus "pct"`: `"Bonus ""pct"""`,
		"":            `""`,
	}
	for in, want := range cases {
		if got := quoteIdent(in); got != want {
			t.Fatalf("quoteIdent(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestCellText(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"Ann", "Ann"},
		{[]byte("raw"), "raw"},
		{int64(-7), "-7"},
		{float64(100000), "100000"},
		{2.5, "2.5"},
		{true, "1"},
		{false, "0"},
	}
	for _, tc := range cases {
		if got := cellText(tc.in); got != tc.want {
			t.Fatalf("cellText(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/empdash/internal/dataset"
	"github.com/verte-zerg/empdash/internal/export"
	"github.com/verte-zerg/empdash/internal/filter"
	"github.com/verte-zerg/empdash/internal/insight"
	"github.com/verte-zerg/empdash/internal/model"
)

const scenarioCSV = `Name,Department,Salary,PerformanceScore,YearJoined
Ann,Eng,100000,5,2020
Bob,Sales,120000,3,2019
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "employees.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadedSession(t *testing.T, content string) *Session {
	t.Helper()
	s := NewSession(dataset.Source{Path: writeCSV(t, content)}, nil, "₹")
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestEvaluateDefaultSpec(t *testing.T) {
	s := loadedSession(t, scenarioCSV)
	spec, err := s.DefaultSpec()
	require.NoError(t, err)

	view, err := s.Evaluate(spec)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Result.Count)
	assert.InDelta(t, 110000, view.Result.MeanSalary, 1e-9)
	assert.Empty(t, view.Warning)
	assert.Equal(t, []string{
		"Top performing department (avg score): Eng (5.00)",
		"Average salary across company: ₹110,000",
		"Department with highest avg salary: Sales",
		"Note: Highest paid dept (Sales) is not the top performing dept (Eng).",
	}, insightTexts(view.Insights))
}

func TestEvaluateEmptyDepartmentSelection(t *testing.T) {
	s := loadedSession(t, scenarioCSV)
	spec, err := s.DefaultSpec()
	require.NoError(t, err)
	spec.Departments = model.NewDepartmentSet()

	view, err := s.Evaluate(spec)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Result.Count)
	assert.Zero(t, view.Result.MeanSalary)
	assert.Empty(t, view.Insights)
}

func TestEvaluateInvertedRangeWarns(t *testing.T) {
	s := loadedSession(t, scenarioCSV)
	spec, err := s.DefaultSpec()
	require.NoError(t, err)
	spec.Salary = &model.Range[float64]{Min: 200000, Max: 1000}

	view, err := s.Evaluate(spec)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Result.Count)
	assert.Contains(t, view.Warning, "Salary range is inverted")
	bounds, ok := s.Bounds()
	require.True(t, ok)
	assert.Equal(t, bounds.Salary, *view.Spec.Salary)
}

func TestEvaluateBeforeLoad(t *testing.T) {
	s := NewSession(dataset.Source{Path: filepath.Join(t.TempDir(), "missing.csv")}, nil, "")
	_, err := s.Evaluate(model.FilterSpec{})
	assert.ErrorIs(t, err, ErrNotLoaded)

	loadErr := s.Load(context.Background())
	require.Error(t, loadErr)
	_, err = s.Evaluate(model.FilterSpec{})
	assert.ErrorIs(t, err, ErrNotLoaded)
	var dsErr *dataset.DataSourceError
	assert.True(t, errors.As(err, &dsErr))
	assert.Equal(t, insight.DefaultCurrency, s.Currency())
}

func TestReloadSwapsTableAndKeepsOldOnFailure(t *testing.T) {
	path := writeCSV(t, scenarioCSV)
	s := NewSession(dataset.Source{Path: path}, nil, "")
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, os.WriteFile(path, []byte(scenarioCSV+"Cy,Ops,50000,4,2022\n"), 0o644))
	require.NoError(t, s.Load(context.Background()))
	tbl, _ := s.Table()
	assert.Equal(t, 2, tbl.Len(), "cached table is reused until reload")

	require.NoError(t, s.Reload(context.Background()))
	tbl, _ = s.Table()
	assert.Equal(t, 3, tbl.Len())
	bounds, _ := s.Bounds()
	assert.Equal(t, []string{"Eng", "Ops", "Sales"}, bounds.Departments)

	require.NoError(t, os.WriteFile(path, []byte("Name,Salary\nAnn,1\n"), 0o644))
	require.Error(t, s.Reload(context.Background()))
	require.Error(t, s.Err())
	tbl, ok := s.Table()
	require.True(t, ok)
	assert.Equal(t, 3, tbl.Len())

	require.NoError(t, os.WriteFile(path, []byte(scenarioCSV), 0o644))
	require.NoError(t, s.Reload(context.Background()))
	assert.NoError(t, s.Err())
}

func TestCacheLoadsOncePerSource(t *testing.T) {
	calls := 0
	c := newCache(func(_ context.Context, src dataset.Source) (model.Table, error) {
		calls++
		return model.Table{}.WithRecords(nil), nil
	})
	ctx := context.Background()
	dir := t.TempDir()

	_, err := c.Load(ctx, dataset.Source{Path: filepath.Join(dir, "a.csv")})
	require.NoError(t, err)
	_, err = c.Load(ctx, dataset.Source{Path: filepath.Join(dir, ".", "a.csv")})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = c.Load(ctx, dataset.Source{Path: filepath.Join(dir, "b.db")})
	require.NoError(t, err)
	_, err = c.Load(ctx, dataset.Source{Path: filepath.Join(dir, "b.db"), SQLiteTable: "staff"})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	c.Invalidate(dataset.Source{Path: filepath.Join(dir, "a.csv")})
	_, err = c.Load(ctx, dataset.Source{Path: filepath.Join(dir, "a.csv")})
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	calls := 0
	c := newCache(func(context.Context, dataset.Source) (model.Table, error) {
		calls++
		return model.Table{}, errors.New("boom")
	})
	src := dataset.Source{Path: "x.csv"}
	_, err := c.Load(context.Background(), src)
	require.Error(t, err)
	_, err = c.Load(context.Background(), src)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestExportAppliesFilter(t *testing.T) {
	s := loadedSession(t, scenarioCSV)
	spec, err := s.DefaultSpec()
	require.NoError(t, err)
	spec.NameQuery = "bo"

	data, err := s.Export(spec)
	require.NoError(t, err)
	tbl, err := export.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "Bob", tbl.Records[0].Name)

	full, _ := s.Table()
	want := filter.Apply(full, spec)
	assert.Equal(t, want, tbl)
}

func insightTexts(in []insight.Insight) []string {
	out := make([]string, 0, len(in))
	for _, ins := range in {
		out = append(out, ins.Text)
	}
	return out
}

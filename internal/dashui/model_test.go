package dashui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/empdash/internal/dashboard"
	"github.com/verte-zerg/empdash/internal/dataset"
	"github.com/verte-zerg/empdash/internal/export"
	"github.com/verte-zerg/empdash/internal/model"
)

const scenarioCSV = `Name,Department,Salary,PerformanceScore,YearJoined
Ann,Eng,100000,5,2020
Bob,Sales,120000,3,2019
`

func newTestModel(t *testing.T) (*Model, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "employees.csv")
	if err := os.WriteFile(path, []byte(scenarioCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	session := dashboard.NewSession(dataset.Source{Path: path}, nil, "₹")
	if err := session.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	m := NewModel(session, filepath.Join(dir, "out", export.DefaultFilename))
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, dir
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestOverviewShowsKPIsAndInsights(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()
	if !containsAll(out, []string{"Overview", "Total Employees", "₹110,000", "4.00", "Top performing department (avg score): Eng (5.00)", "By Department"}) {
		t.Fatalf("overview missing expected segments:\n%s", out)
	}
}

func TestTabsCycle(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabData {
		t.Fatalf("expected data tab, got %d", m.activeTab)
	}
	if !containsAll(m.View(), []string{"PerformanceScore", "Ann", "Bob"}) {
		t.Fatalf("data tab missing records:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabCharts {
		t.Fatalf("expected charts tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "Employees by Department") {
		t.Fatalf("charts tab missing bar chart:\n%s", m.View())
	}
}

func TestFilterFormAppliesSelection(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(keyRunes("/"))
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	if got := m.filterInputs[inputDepartments].Value(); got != "Eng, Sales" {
		t.Fatalf("expected prefilled departments, got %q", got)
	}
	m.filterInputs[inputDepartments].SetValue("Sales")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter mode to close")
	}
	if m.view.Result.Count != 1 || m.view.Table.Records[0].Name != "Bob" {
		t.Fatalf("unexpected filtered view: %+v", m.view.Result)
	}

	m.Update(keyRunes("c"))
	if m.view.Result.Count != 2 {
		t.Fatalf("expected reset to select everyone, got %d", m.view.Result.Count)
	}
}

func TestFilterFormRejectsBadNumbers(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(keyRunes("/"))
	m.filterInputs[inputSalaryMin].SetValue("lots")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode {
		t.Fatalf("expected form to stay open")
	}
	if !strings.Contains(m.filterError, "invalid salary min") {
		t.Fatalf("unexpected error: %q", m.filterError)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode || m.view.Result.Count != 2 {
		t.Fatalf("expected cancel to keep previous view")
	}
}

func TestInvertedRangeShowsWarning(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(keyRunes("/"))
	m.filterInputs[inputYearMin].SetValue("2025")
	m.filterInputs[inputYearMax].SetValue("2000")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.view.Result.Count != 2 {
		t.Fatalf("expected fallback to the full year range, got %d", m.view.Result.Count)
	}
	if !strings.Contains(m.View(), "YearJoined range is inverted") {
		t.Fatalf("expected warning in footer:\n%s", m.View())
	}
}

func TestExportWritesWorkbook(t *testing.T) {
	m, dir := newTestModel(t)
	m.spec.NameQuery = "ann"
	m.refresh()
	m.Update(keyRunes("e"))
	if m.errMsg != "" {
		t.Fatalf("export failed: %s", m.errMsg)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out", export.DefaultFilename))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	tbl, err := export.Deserialize(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if tbl.Len() != 1 || tbl.Records[0].Name != "Ann" {
		t.Fatalf("unexpected export contents: %+v", tbl.Records)
	}
	if !strings.HasPrefix(m.statusMsg, "Exported 1 rows to ") {
		t.Fatalf("unexpected status: %q", m.statusMsg)
	}
}

func TestEmptySelectionShowsNotice(t *testing.T) {
	m, _ := newTestModel(t)
	m.spec.Departments = model.NewDepartmentSet()
	m.refresh()
	if !strings.Contains(m.View(), emptyNotice) {
		t.Fatalf("expected empty notice:\n%s", m.View())
	}
}

func TestParseSpecDefaultsBlankRanges(t *testing.T) {
	b := model.Bounds{
		Departments: []string{"Eng"},
		Salary:      model.Range[float64]{Min: 10, Max: 20},
		Performance: model.Range[float64]{Min: 1, Max: 5},
		YearJoined:  model.Range[int]{Min: 2000, Max: 2020},
	}
	spec, err := parseSpec([]string{"Eng", "", "15", "", "", "2010", "", " an "}, b)
	if err != nil {
		t.Fatalf("parseSpec failed: %v", err)
	}
	if *spec.Salary != (model.Range[float64]{Min: 10, Max: 15}) {
		t.Fatalf("unexpected salary range: %v", *spec.Salary)
	}
	if *spec.Performance != b.Performance {
		t.Fatalf("unexpected performance range: %v", *spec.Performance)
	}
	if *spec.YearJoined != (model.Range[int]{Min: 2010, Max: 2020}) {
		t.Fatalf("unexpected year range: %v", *spec.YearJoined)
	}
	if spec.NameQuery != "an" {
		t.Fatalf("unexpected name query: %q", spec.NameQuery)
	}
	if _, ok := spec.Departments["Eng"]; !ok || len(spec.Departments) != 1 {
		t.Fatalf("unexpected departments: %v", spec.Departments)
	}

	if _, err := parseSpec([]string{"Eng", "", "", "", "", "20x0"}, b); err == nil {
		t.Fatalf("expected year parse error")
	}
}

func TestSpecInputsRoundTrip(t *testing.T) {
	b := model.Bounds{
		Departments: []string{"Eng", "Ops"},
		Salary:      model.Range[float64]{Min: 1000.5, Max: 2000},
		Performance: model.Range[float64]{Min: 1, Max: 5},
		YearJoined:  model.Range[int]{Min: 2000, Max: 2020},
	}
	spec := model.FilterSpec{
		Departments: model.NewDepartmentSet("Ops", "Eng"),
		Salary:      &b.Salary,
		Performance: &b.Performance,
		YearJoined:  &b.YearJoined,
		NameQuery:   "jo",
	}
	got, err := parseSpec(specInputs(spec), b)
	if err != nil {
		t.Fatalf("parseSpec failed: %v", err)
	}
	if len(got.Departments) != 2 || *got.Salary != b.Salary || got.NameQuery != "jo" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

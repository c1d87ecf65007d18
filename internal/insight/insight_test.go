package insight

import (
	"reflect"
	"slices"
	"testing"

	"github.com/verte-zerg/empdash/internal/model"
	"github.com/verte-zerg/empdash/internal/stats"
)

func scenarioResult() model.AggregateResult {
	return stats.Summarize(model.Table{
		Columns: []model.Column{{Name: model.ColName}},
		Records: []model.Record{
			{Name: "Ann", Department: "Eng", Salary: 100000, PerformanceScore: 5, YearJoined: 2020},
			{Name: "Bob", Department: "Sales", Salary: 120000, PerformanceScore: 3, YearJoined: 2019},
		},
	})
}

func TestGenerateScenario(t *testing.T) {
	got := Texts(Generate(scenarioResult()))
	want := []string{
		"Top performing department (avg score): Eng (5.00)",
		"Average salary across company: ₹110,000",
		"Department with highest avg salary: Sales",
		"Note: Highest paid dept (Sales) is not the top performing dept (Eng).",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected insights:\n got %q\nwant %q", got, want)
	}
}

func TestGenerateEmptyResult(t *testing.T) {
	if got := Texts(Generate(model.AggregateResult{})); len(got) != 0 {
		t.Fatalf("expected no insights, got %q", got)
	}
}

func TestGenerateSingleDepartmentSkipsComparison(t *testing.T) {
	result := model.AggregateResult{
		Count:           3,
		MeanSalary:      50000,
		MeanPerformance: 4,
		Departments:     []model.DepartmentStats{{Department: "Eng", Count: 3, MeanSalary: 50000, MeanPerformance: 4}},
	}
	var rules []string
	for ins := range Generate(result) {
		rules = append(rules, ins.Rule)
	}
	want := []string{RuleTopPerformance, RuleAverageSalary}
	if !reflect.DeepEqual(rules, want) {
		t.Fatalf("expected rules %v, got %v", want, rules)
	}
}

func TestGenerateNoMismatchNote(t *testing.T) {
	result := model.AggregateResult{
		Count: 2,
		Departments: []model.DepartmentStats{
			{Department: "Eng", MeanSalary: 200, MeanPerformance: 5},
			{Department: "Ops", MeanSalary: 100, MeanPerformance: 2},
		},
	}
	got := Texts(Generate(result))
	if len(got) != 3 {
		t.Fatalf("expected 3 insights, got %q", got)
	}
	if got[2] != "Department with highest avg salary: Eng" {
		t.Fatalf("unexpected comparison insight: %q", got[2])
	}
}

func TestGenerateIsLazyAndRestartable(t *testing.T) {
	calls := 0
	g := &Generator{
		Currency: "$",
		Rules: []Rule{
			{Name: "first", Emit: func(model.AggregateResult, Format) []string { calls++; return []string{"a"} }},
			{Name: "second", Emit: func(model.AggregateResult, Format) []string { calls++; return []string{"b"} }},
		},
	}
	seq := g.Generate(model.AggregateResult{})
	if calls != 0 {
		t.Fatalf("rules evaluated before iteration")
	}
	for range seq {
		break
	}
	if calls != 1 {
		t.Fatalf("expected only the first rule to run, got %d calls", calls)
	}
	if got := slices.Collect(seq); len(got) != 2 {
		t.Fatalf("expected a full second pass, got %v", got)
	}
}

func TestGeneratorCurrency(t *testing.T) {
	got := Texts(NewGenerator("$").Generate(scenarioResult()))
	if got[1] != "Average salary across company: $110,000" {
		t.Fatalf("unexpected salary insight: %q", got[1])
	}
}

// Package insight derives human-readable observations from aggregates.
package insight

import (
	"fmt"
	"iter"

	"github.com/verte-zerg/empdash/internal/model"
	"github.com/verte-zerg/empdash/internal/stats"
)

// DefaultCurrency is the symbol used for salary figures.
const DefaultCurrency = "₹"

// Rule names.
const (
	RuleTopPerformance      = "top-performance"
	RuleAverageSalary       = "average-salary"
	RuleSalaryVsPerformance = "salary-vs-performance"
)

// Insight is one generated statement and the rule that produced it.
type Insight struct {
	Rule string
	Text string
}

// Format carries presentation settings for rule output.
type Format struct {
	Currency string
}

// Rule is a guarded insight producer. Emit is only called when Applies
// returns true.
type Rule struct {
	Name    string
	Applies func(model.AggregateResult) bool
	Emit    func(model.AggregateResult, Format) []string
}

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    RuleTopPerformance,
			Applies: hasDepartments(1),
			Emit: func(r model.AggregateResult, _ Format) []string {
				top, _ := stats.TopDepartment(r, stats.MetricPerformance)
				return []string{fmt.Sprintf("Top performing department (avg score): %s (%.2f)", top.Department, top.MeanPerformance)}
			},
		},
		{
			Name: RuleAverageSalary,
			Applies: func(r model.AggregateResult) bool {
				return r.Count > 0
			},
			Emit: func(r model.AggregateResult, f Format) []string {
				return []string{fmt.Sprintf("Average salary across company: %s", stats.FormatCurrency(r.MeanSalary, f.Currency))}
			},
		},
		{
			Name:    RuleSalaryVsPerformance,
			Applies: hasDepartments(2),
			Emit: func(r model.AggregateResult, _ Format) []string {
				topSalary, _ := stats.TopDepartment(r, stats.MetricSalary)
				topPerf, _ := stats.TopDepartment(r, stats.MetricPerformance)
				out := []string{fmt.Sprintf("Department with highest avg salary: %s", topSalary.Department)}
				if topSalary.Department != topPerf.Department {
					out = append(out, fmt.Sprintf("Note: Highest paid dept (%s) is not the top performing dept (%s).", topSalary.Department, topPerf.Department))
				}
				return out
			},
		},
	}
}

func hasDepartments(n int) func(model.AggregateResult) bool {
	return func(r model.AggregateResult) bool {
		return len(r.Departments) >= n
	}
}

// Generator evaluates rules against aggregates.
type Generator struct {
	Rules    []Rule
	Currency string
}

// NewGenerator returns a generator with the default rules.
func NewGenerator(currency string) *Generator {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Generator{Rules: DefaultRules(), Currency: currency}
}

// Generate yields insights rule by rule. Each iteration re-evaluates the
// rules, so the sequence can be ranged over more than once.
func (g *Generator) Generate(result model.AggregateResult) iter.Seq[Insight] {
	return func(yield func(Insight) bool) {
		f := Format{Currency: g.Currency}
		for _, rule := range g.Rules {
			if rule.Applies != nil && !rule.Applies(result) {
				continue
			}
			for _, text := range rule.Emit(result, f) {
				if !yield(Insight{Rule: rule.Name, Text: text}) {
					return
				}
			}
		}
	}
}

// Generate yields insights using the default rules and currency.
func Generate(result model.AggregateResult) iter.Seq[Insight] {
	return NewGenerator(DefaultCurrency).Generate(result)
}

// Texts collects the text of every insight in seq.
func Texts(seq iter.Seq[Insight]) []string {
	var out []string
	for ins := range seq {
		out = append(out, ins.Text)
	}
	return out
}

// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/empdash/internal/model"
)

// Summarize computes the KPIs and the per-department breakdown of tbl.
func Summarize(tbl model.Table) model.AggregateResult {
	result := model.AggregateResult{Count: tbl.Len()}
	if result.Count == 0 {
		return result
	}

	type acc struct {
		count  int
		salary float64
		perf   float64
	}
	groups := map[string]*acc{}
	var salarySum, perfSum float64
	for _, rec := range tbl.Records {
		salarySum += rec.Salary
		perfSum += rec.PerformanceScore
		g, ok := groups[rec.Department]
		if !ok {
			g = &acc{}
			groups[rec.Department] = g
		}
		g.count++
		g.salary += rec.Salary
		g.perf += rec.PerformanceScore
	}
	count := float64(result.Count)
	result.MeanSalary = salarySum / count
	result.MeanPerformance = perfSum / count

	result.Departments = make([]model.DepartmentStats, 0, len(groups))
	for name, g := range groups {
		n := float64(g.count)
		result.Departments = append(result.Departments, model.DepartmentStats{
			Department:      name,
			Count:           g.count,
			MeanSalary:      g.salary / n,
			MeanPerformance: g.perf / n,
		})
	}
	sort.Slice(result.Departments, func(i, j int) bool {
		return result.Departments[i].Department < result.Departments[j].Department
	})
	return result
}

// ObservedBounds returns the departments and value ranges present in tbl.
// Salary and performance bounds are widened to whole numbers.
func ObservedBounds(tbl model.Table) model.Bounds {
	b := model.Bounds{Departments: tbl.Departments()}
	if tbl.Len() == 0 {
		return b
	}
	first := tbl.Records[0]
	b.Salary = model.Range[float64]{Min: first.Salary, Max: first.Salary}
	b.Performance = model.Range[float64]{Min: first.PerformanceScore, Max: first.PerformanceScore}
	b.YearJoined = model.Range[int]{Min: first.YearJoined, Max: first.YearJoined}
	for _, rec := range tbl.Records[1:] {
		b.Salary.Min = math.Min(b.Salary.Min, rec.Salary)
		b.Salary.Max = math.Max(b.Salary.Max, rec.Salary)
		b.Performance.Min = math.Min(b.Performance.Min, rec.PerformanceScore)
		b.Performance.Max = math.Max(b.Performance.Max, rec.PerformanceScore)
		b.YearJoined.Min = min(b.YearJoined.Min, rec.YearJoined)
		b.YearJoined.Max = max(b.YearJoined.Max, rec.YearJoined)
	}
	b.Salary = model.Range[float64]{Min: math.Floor(b.Salary.Min), Max: math.Ceil(b.Salary.Max)}
	b.Performance = model.Range[float64]{Min: math.Floor(b.Performance.Min), Max: math.Ceil(b.Performance.Max)}
	return b
}

// Metric selects a per-department mean.
type Metric int

const (
	MetricSalary Metric = iota
	MetricPerformance
)

func (m Metric) value(d model.DepartmentStats) float64 {
	if m == MetricSalary {
		return d.MeanSalary
	}
	return d.MeanPerformance
}

// TopDepartment returns the department with the highest mean for the
// metric. Ties keep the first department in breakdown order.
func TopDepartment(result model.AggregateResult, metric Metric) (model.DepartmentStats, bool) {
	if len(result.Departments) == 0 {
		return model.DepartmentStats{}, false
	}
	best := result.Departments[0]
	for _, d := range result.Departments[1:] {
		if metric.value(d) > metric.value(best) {
			best = d
		}
	}
	return best, true
}

// FormatCurrency rounds amount to a whole number and groups thousands.
func FormatCurrency(amount float64, symbol string) string {
	rounded := int64(math.RoundToEven(amount))
	out := humanize.Comma(rounded)
	if strings.HasPrefix(out, "-") {
		return "-" + symbol + strings.TrimPrefix(out, "-")
	}
	return symbol + out
}

package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/verte-zerg/empdash/internal/model"
)

// Bucket is one labeled bar of a chart.
type Bucket struct {
	Label string
	Value float64
}

// SalaryRange is the min/mean/max salary of one department.
type SalaryRange struct {
	Department string
	Min        float64
	Mean       float64
	Max        float64
}

// Pivot holds mean performance by department (rows) and year joined
// (columns). Cells without employees are nil.
type Pivot struct {
	Departments []string
	Years       []int
	Cells       [][]*float64
}

// Empty reports whether the pivot has no cells.
func (p Pivot) Empty() bool {
	return len(p.Departments) == 0 || len(p.Years) == 0
}

// CountByDepartment returns the number of employees per department.
func CountByDepartment(tbl model.Table) []Bucket {
	counts := map[string]int{}
	for _, rec := range tbl.Records {
		counts[rec.Department]++
	}
	out := make([]Bucket, 0, len(counts))
	for _, dept := range tbl.Departments() {
		out = append(out, Bucket{Label: dept, Value: float64(counts[dept])})
	}
	return out
}

// PerformanceDistribution counts employees per rounded performance score.
func PerformanceDistribution(tbl model.Table) []Bucket {
	counts := map[int]int{}
	for _, rec := range tbl.Records {
		counts[int(math.Round(rec.PerformanceScore))]++
	}
	scores := make([]int, 0, len(counts))
	for score := range counts {
		scores = append(scores, score)
	}
	sort.Ints(scores)
	out := make([]Bucket, 0, len(scores))
	for _, score := range scores {
		out = append(out, Bucket{Label: strconv.Itoa(score), Value: float64(counts[score])})
	}
	return out
}

// SalarySpread returns the salary range of every department.
func SalarySpread(tbl model.Table) []SalaryRange {
	spread := map[string]*SalaryRange{}
	counts := map[string]int{}
	for _, rec := range tbl.Records {
		r, ok := spread[rec.Department]
		if !ok {
			r = &SalaryRange{Department: rec.Department, Min: rec.Salary, Max: rec.Salary}
			spread[rec.Department] = r
		}
		r.Min = math.Min(r.Min, rec.Salary)
		r.Max = math.Max(r.Max, rec.Salary)
		r.Mean += rec.Salary
		counts[rec.Department]++
	}
	out := make([]SalaryRange, 0, len(spread))
	for _, dept := range tbl.Departments() {
		r := spread[dept]
		r.Mean /= float64(counts[dept])
		out = append(out, *r)
	}
	return out
}

// PerformancePivot averages performance by department and year joined.
func PerformancePivot(tbl model.Table) Pivot {
	type key struct {
		dept string
		year int
	}
	sums := map[key]float64{}
	counts := map[key]int{}
	yearSet := map[int]struct{}{}
	for _, rec := range tbl.Records {
		k := key{dept: rec.Department, year: rec.YearJoined}
		sums[k] += rec.PerformanceScore
		counts[k]++
		yearSet[rec.YearJoined] = struct{}{}
	}
	p := Pivot{Departments: tbl.Departments()}
	for year := range yearSet {
		p.Years = append(p.Years, year)
	}
	sort.Ints(p.Years)
	p.Cells = make([][]*float64, len(p.Departments))
	for i, dept := range p.Departments {
		p.Cells[i] = make([]*float64, len(p.Years))
		for j, year := range p.Years {
			k := key{dept: dept, year: year}
			if n := counts[k]; n > 0 {
				mean := sums[k] / float64(n)
				p.Cells[i][j] = &mean
			}
		}
	}
	return p
}

// SalaryBuckets converts a salary spread into mean-salary bars.
func SalaryBuckets(spread []SalaryRange) []Bucket {
	out := make([]Bucket, 0, len(spread))
	for _, r := range spread {
		out = append(out, Bucket{Label: r.Department, Value: r.Mean})
	}
	return out
}

func formatCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

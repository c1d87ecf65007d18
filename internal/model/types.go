// Package model defines shared data structures.
package model

import (
	"cmp"
	"sort"
)

// Required column names of an employee dataset.
const (
	ColName        = "Name"
	ColDepartment  = "Department"
	ColSalary      = "Salary"
	ColPerformance = "PerformanceScore"
	ColYearJoined  = "YearJoined"
)

// RequiredColumns lists the columns every dataset must carry.
var RequiredColumns = []string{ColName, ColDepartment, ColSalary, ColPerformance, ColYearJoined}

// Kind is the parsed type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "text"
	}
}

// ParseKind maps a Kind name back to its value.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "text":
		return KindText, true
	case "int":
		return KindInt, true
	case "float":
		return KindFloat, true
	}
	return KindText, false
}

// Column describes one table column.
type Column struct {
	Name string
	Kind Kind
}

// Record is one employee entry. Extra holds the values of extension
// columns in table order: nil, string, int64 or float64.
type Record struct {
	Name             string
	Department       string
	Salary           float64
	PerformanceScore float64
	YearJoined       int
	Extra            []any
}

// Table is an ordered, uniform-schema sequence of records. Tables are
// never mutated after construction; derived views are new tables.
type Table struct {
	Columns []Column
	Records []Record
}

// Len returns the number of records.
func (t Table) Len() int {
	return len(t.Records)
}

// Header returns the column names in order.
func (t Table) Header() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// WithRecords returns a table with the same schema and the given records.
func (t Table) WithRecords(records []Record) Table {
	if records == nil {
		records = []Record{}
	}
	return Table{Columns: t.Columns, Records: records}
}

// Row returns the values of record i in column order.
func (t Table) Row(i int) []any {
	rec := t.Records[i]
	out := make([]any, len(t.Columns))
	extra := 0
	for ci, col := range t.Columns {
		switch col.Name {
		case ColName:
			out[ci] = rec.Name
		case ColDepartment:
			out[ci] = rec.Department
		case ColSalary:
			out[ci] = rec.Salary
		case ColPerformance:
			out[ci] = rec.PerformanceScore
		case ColYearJoined:
			out[ci] = rec.YearJoined
		default:
			if extra < len(rec.Extra) {
				out[ci] = rec.Extra[extra]
			}
			extra++
		}
	}
	return out
}

// Departments returns the distinct departments sorted by name.
func (t Table) Departments() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, rec := range t.Records {
		if _, ok := seen[rec.Department]; ok {
			continue
		}
		seen[rec.Department] = struct{}{}
		out = append(out, rec.Department)
	}
	sort.Strings(out)
	return out
}

// IsCoreColumn reports whether name is one of the required columns.
func IsCoreColumn(name string) bool {
	for _, c := range RequiredColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Range is an inclusive [Min, Max] interval.
type Range[T cmp.Ordered] struct {
	Min T
	Max T
}

// Contains reports whether v lies within the range, both ends included.
func (r Range[T]) Contains(v T) bool {
	return v >= r.Min && v <= r.Max
}

// Inverted reports whether Min is greater than Max.
func (r Range[T]) Inverted() bool {
	return r.Min > r.Max
}

// FilterSpec selects records. Nil ranges and an empty NameQuery match
// everything; an empty Departments set matches nothing.
type FilterSpec struct {
	Departments map[string]struct{}
	Salary      *Range[float64]
	Performance *Range[float64]
	YearJoined  *Range[int]
	NameQuery   string
}

// NewDepartmentSet builds a department selection.
func NewDepartmentSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// SelectedDepartments returns the selected departments sorted by name.
func (s FilterSpec) SelectedDepartments() []string {
	out := make([]string, 0, len(s.Departments))
	for name := range s.Departments {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Bounds are the observed value ranges of a table.
type Bounds struct {
	Departments []string
	Salary      Range[float64]
	Performance Range[float64]
	YearJoined  Range[int]
}

// DepartmentStats holds per-department means.
type DepartmentStats struct {
	Department      string
	Count           int
	MeanSalary      float64
	MeanPerformance float64
}

// AggregateResult summarizes a table view. Means are 0 when Count is 0.
type AggregateResult struct {
	Count           int
	MeanSalary      float64
	MeanPerformance float64
	Departments     []DepartmentStats
}

// Department returns the stats for a department, if present.
func (r AggregateResult) Department(name string) (DepartmentStats, bool) {
	for _, d := range r.Departments {
		if d.Department == name {
			return d, true
		}
	}
	return DepartmentStats{}, false
}

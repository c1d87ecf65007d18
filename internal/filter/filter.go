// Package filter selects employee records by department, ranges and name.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/empdash/internal/model"
)

// FilterRangeError reports a range whose minimum exceeds its maximum.
type FilterRangeError struct {
	Field string
	Min   float64
	Max   float64
}

func (e *FilterRangeError) Error() string {
	return fmt.Sprintf("%s range is inverted (min %g > max %g); using the full range", e.Field, e.Min, e.Max)
}

// Apply returns the records of tbl matching every clause of spec, in
// their original order. The result shares the schema of tbl.
func Apply(tbl model.Table, spec model.FilterSpec) model.Table {
	if len(spec.Departments) == 0 {
		return tbl.WithRecords(nil)
	}
	query := strings.ToLower(spec.NameQuery)
	out := make([]model.Record, 0, tbl.Len())
	for _, rec := range tbl.Records {
		if matches(rec, spec, query) {
			out = append(out, rec)
		}
	}
	return tbl.WithRecords(out)
}

// Matches reports whether a single record satisfies spec.
func Matches(rec model.Record, spec model.FilterSpec) bool {
	return matches(rec, spec, strings.ToLower(spec.NameQuery))
}

func matches(rec model.Record, spec model.FilterSpec, lowerQuery string) bool {
	if _, ok := spec.Departments[rec.Department]; !ok {
		return false
	}
	if spec.Salary != nil && !spec.Salary.Contains(rec.Salary) {
		return false
	}
	if spec.Performance != nil && !spec.Performance.Contains(rec.PerformanceScore) {
		return false
	}
	if spec.YearJoined != nil && !spec.YearJoined.Contains(rec.YearJoined) {
		return false
	}
	if lowerQuery != "" {
		if rec.Name == "" || !strings.Contains(strings.ToLower(rec.Name), lowerQuery) {
			return false
		}
	}
	return true
}

// Default selects every department and the full observed ranges.
func Default(b model.Bounds) model.FilterSpec {
	salary := b.Salary
	perf := b.Performance
	year := b.YearJoined
	return model.FilterSpec{
		Departments: model.NewDepartmentSet(b.Departments...),
		Salary:      &salary,
		Performance: &perf,
		YearJoined:  &year,
	}
}

// Normalize replaces inverted ranges with the observed bounds. The
// returned spec is always usable; the error lists every replaced range.
func Normalize(spec model.FilterSpec, b model.Bounds) (model.FilterSpec, error) {
	var errs []error
	if spec.Salary != nil && spec.Salary.Inverted() {
		errs = append(errs, &FilterRangeError{Field: model.ColSalary, Min: spec.Salary.Min, Max: spec.Salary.Max})
		r := b.Salary
		spec.Salary = &r
	}
	if spec.Performance != nil && spec.Performance.Inverted() {
		errs = append(errs, &FilterRangeError{Field: model.ColPerformance, Min: spec.Performance.Min, Max: spec.Performance.Max})
		r := b.Performance
		spec.Performance = &r
	}
	if spec.YearJoined != nil && spec.YearJoined.Inverted() {
		errs = append(errs, &FilterRangeError{Field: model.ColYearJoined, Min: float64(spec.YearJoined.Min), Max: float64(spec.YearJoined.Max)})
		r := b.YearJoined
		spec.YearJoined = &r
	}
	return spec, errors.Join(errs...)
}

// ParseDepartments splits a comma separated list into a selection.
// Blank entries are dropped, so "" selects no department.
func ParseDepartments(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		set[part] = struct{}{}
	}
	return set
}

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/empdash/internal/filter"
	"github.com/verte-zerg/empdash/internal/model"
)

type filterFlags struct {
	depts     []string
	salaryMin float64
	salaryMax float64
	perfMin   float64
	perfMax   float64
	yearMin   int
	yearMax   int
	name      string
}

var filterOpts filterFlags

func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVar(&filterOpts.depts, "dept", nil, "departments to include (repeatable or comma separated; empty selects none)")
	f.Float64Var(&filterOpts.salaryMin, "salary-min", 0, "minimum salary (default: observed minimum)")
	f.Float64Var(&filterOpts.salaryMax, "salary-max", 0, "maximum salary (default: observed maximum)")
	f.Float64Var(&filterOpts.perfMin, "perf-min", 0, "minimum performance score (default: observed minimum)")
	f.Float64Var(&filterOpts.perfMax, "perf-max", 0, "maximum performance score (default: observed maximum)")
	f.IntVar(&filterOpts.yearMin, "year-min", 0, "earliest year joined (default: observed minimum)")
	f.IntVar(&filterOpts.yearMax, "year-max", 0, "latest year joined (default: observed maximum)")
	f.StringVar(&filterOpts.name, "name", "", "case-insensitive name substring")
}

// filterSpecFromFlags starts from the full observed bounds and narrows
// every clause whose flag was given.
func filterSpecFromFlags(cmd *cobra.Command, b model.Bounds) model.FilterSpec {
	spec := filter.Default(b)
	changed := cmd.Flags().Changed
	if changed("dept") {
		spec.Departments = filter.ParseDepartments(strings.Join(filterOpts.depts, ","))
	}
	if changed("salary-min") {
		spec.Salary.Min = filterOpts.salaryMin
	}
	if changed("salary-max") {
		spec.Salary.Max = filterOpts.salaryMax
	}
	if changed("perf-min") {
		spec.Performance.Min = filterOpts.perfMin
	}
	if changed("perf-max") {
		spec.Performance.Max = filterOpts.perfMax
	}
	if changed("year-min") {
		spec.YearJoined.Min = filterOpts.yearMin
	}
	if changed("year-max") {
		spec.YearJoined.Max = filterOpts.yearMax
	}
	spec.NameQuery = strings.TrimSpace(filterOpts.name)
	return spec
}

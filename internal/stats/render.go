package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/empdash/internal/model"
)

// RenderSummary prints the KPI block followed by the insights.
func RenderSummary(w io.Writer, result model.AggregateResult, insights []string, currency string) error {
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total Employees: %d\n", result.Count); err != nil {
		return err
	}
	if result.Count == 0 {
		if _, err := fmt.Fprintln(w, "No employees match the current filters."); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "Average Salary: %s\n", FormatCurrency(result.MeanSalary, currency)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Average Performance: %.2f\n", result.MeanPerformance); err != nil {
			return err
		}
	}
	if len(insights) > 0 {
		if _, err := fmt.Fprintln(w, "\nInsights"); err != nil {
			return err
		}
		for _, text := range insights {
			if _, err := fmt.Fprintf(w, "- %s\n", text); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// BreakdownLines formats the per-department breakdown as aligned lines.
func BreakdownLines(result model.AggregateResult, currency string) []string {
	headers := []string{"Department", "Employees", "Avg Salary", "Avg Score"}
	rows := make([][]string, 0, len(result.Departments))
	for _, d := range result.Departments {
		rows = append(rows, []string{
			d.Department,
			strconv.Itoa(d.Count),
			FormatCurrency(d.MeanSalary, currency),
			fmt.Sprintf("%.2f", d.MeanPerformance),
		})
	}
	return textTable{headers: headers, rows: rows, rightAlign: map[int]bool{1: true, 2: true, 3: true}, rule: true}.lines()
}

// RenderBreakdown prints the per-department breakdown.
func RenderBreakdown(w io.Writer, result model.AggregateResult, currency string) error {
	if len(result.Departments) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "By Department"); err != nil {
		return err
	}
	return writeLines(w, BreakdownLines(result, currency))
}

// PivotLines formats the performance pivot with one row per department.
func PivotLines(p Pivot) []string {
	if p.Empty() {
		return nil
	}
	headers := make([]string, 0, len(p.Years)+1)
	headers = append(headers, "Department")
	rightAlign := map[int]bool{}
	for i, year := range p.Years {
		headers = append(headers, strconv.Itoa(year))
		rightAlign[i+1] = true
	}
	rows := make([][]string, 0, len(p.Departments))
	for i, dept := range p.Departments {
		row := make([]string, 0, len(p.Years)+1)
		row = append(row, dept)
		for _, cell := range p.Cells[i] {
			row = append(row, formatCell(cell))
		}
		rows = append(rows, row)
	}
	return textTable{headers: headers, rows: rows, rightAlign: rightAlign, rule: true}.lines()
}

// RenderPivot prints the average performance by department and year.
func RenderPivot(w io.Writer, p Pivot) error {
	if p.Empty() {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Avg Performance (Dept vs Year)"); err != nil {
		return err
	}
	return writeLines(w, PivotLines(p))
}

// RenderSpread prints the salary range of each department.
func RenderSpread(w io.Writer, spread []SalaryRange, currency string) error {
	if len(spread) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Salary Distribution by Department"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(spread))
	for _, r := range spread {
		rows = append(rows, []string{
			r.Department,
			FormatCurrency(r.Min, currency),
			FormatCurrency(r.Mean, currency),
			FormatCurrency(r.Max, currency),
		})
	}
	lines := textTable{
		headers:    []string{"Department", "Min", "Mean", "Max"},
		rows:       rows,
		rightAlign: map[int]bool{1: true, 2: true, 3: true},
		rule:       true,
	}.lines()
	return writeLines(w, lines)
}

// RenderRecords prints a table view with its original header.
func RenderRecords(w io.Writer, tbl model.Table) error {
	if tbl.Len() == 0 {
		_, err := fmt.Fprintln(w, "No records.")
		return err
	}
	rightAlign := map[int]bool{}
	for i, col := range tbl.Columns {
		if col.Kind != model.KindText {
			rightAlign[i] = true
		}
	}
	rows := make([][]string, tbl.Len())
	for i := range rows {
		rows[i] = FormatRow(tbl.Row(i))
	}
	return writeLines(w, textTable{headers: tbl.Header(), rows: rows, rightAlign: rightAlign, rule: true}.lines())
}

// FormatRow renders row values as display strings.
func FormatRow(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil:
			out[i] = ""
		case float64:
			out[i] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(val)
		}
	}
	return out
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

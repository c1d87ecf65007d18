package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const maxCellWidth = 28

// textTable is an aligned plain-text table. Cells wider than maxCellWidth
// are truncated with an ellipsis.
type textTable struct {
	headers    []string
	rows       [][]string
	rightAlign map[int]bool
	rule       bool
}

func (t textTable) lines() []string {
	colCount := len(t.headers)
	for _, row := range t.rows {
		colCount = max(colCount, len(row))
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range t.headers {
		widths[i] = displayWidth(fitCell(header))
	}
	for _, row := range t.rows {
		for i := 0; i < colCount; i++ {
			widths[i] = max(widths[i], displayWidth(fitCell(cellAt(row, i))))
		}
	}

	lines := make([]string, 0, len(t.rows)+2)
	if len(t.headers) > 0 {
		lines = append(lines, t.formatRow(t.headers, widths))
		if t.rule {
			parts := make([]string, len(widths))
			for i, w := range widths {
				parts[i] = strings.Repeat("-", w)
			}
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	for _, row := range t.rows {
		lines = append(lines, t.formatRow(row, widths))
	}
	return lines
}

func (t textTable) formatRow(row []string, widths []int) string {
	var b strings.Builder
	for i, w := range widths {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(fitCell(cellAt(row, i)), w, t.rightAlign[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func fitCell(value string) string {
	return runewidth.Truncate(value, maxCellWidth, "…")
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := displayWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}

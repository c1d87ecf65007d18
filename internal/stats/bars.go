package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	barFull             = "█"
	minBarWidth         = 10
	barValueWidth       = 12
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var colorPalette = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
	"\x1b[34m", // blue
}

// BarFormat renders a bucket value next to its bar.
type BarFormat func(float64) string

// CountFormat prints values as whole counts.
func CountFormat(v float64) string {
	return fmt.Sprintf("%d", int64(math.Round(v)))
}

// RenderBars prints a horizontal bar chart. A width of 0 fits the
// terminal; color is used when forced or when w is a terminal.
func RenderBars(w io.Writer, title string, buckets []Bucket, format BarFormat, width int, forceColor bool) error {
	if len(buckets) == 0 {
		return nil
	}
	if format == nil {
		format = CountFormat
	}
	if width <= 0 {
		width = terminalWidth()
	}

	labelWidth := 0
	maxVal := 0.0
	for _, b := range buckets {
		labelWidth = max(labelWidth, displayWidth(fitCell(b.Label)))
		maxVal = math.Max(maxVal, b.Value)
	}
	barWidth := BarWidthFor(width, labelWidth)
	useColor := shouldUseColor(w, forceColor)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for i, b := range buckets {
		n := 0
		if maxVal > 0 {
			n = int(math.Round(b.Value / maxVal * float64(barWidth)))
		}
		if n == 0 && b.Value > 0 {
			n = 1
		}
		bar := strings.Repeat(barFull, n)
		if useColor {
			bar = colorPalette[i%len(colorPalette)] + bar + colorReset
		}
		line := fmt.Sprintf("%s │ %s %s", padCell(fitCell(b.Label), labelWidth, false), bar, format(b.Value))
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// BarWidthFor computes the bar length that fits the total width after
// the label column and the value column.
func BarWidthFor(totalWidth, labelWidth int) int {
	if totalWidth <= 0 {
		return minBarWidth
	}
	return max(minBarWidth, totalWidth-labelWidth-3-barValueWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
